// Package ledger accumulates original and condensed durations across a run
// and computes the saved-time report.
package ledger

import (
	"sync"
	"time"
)

// minReportableOriginal guards the percentage against division by near-zero.
const minReportableOriginal = time.Millisecond

// entry holds both measurements for one file.
type entry struct {
	original  time.Duration
	condensed time.Duration
	hasOrig   bool
	hasCond   bool
}

// Ledger accumulates per-file duration measurements.
//
// Only files with BOTH a pre- and post-processing measurement count toward
// the totals, so the saved-time percentage is computed over a consistent
// subset; a file whose probe failed on either side degrades the report's
// coverage, never its arithmetic.
//
// Safe for concurrent use: the condensing pass may run files in parallel.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]*entry)}
}

// RecordOriginal records the pre-processing duration for a file.
func (l *Ledger) RecordOriginal(file string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entry(file)
	e.original = d
	e.hasOrig = true
}

// RecordCondensed records the post-processing duration for a file.
func (l *Ledger) RecordCondensed(file string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entry(file)
	e.condensed = d
	e.hasCond = true
}

// entry returns the record for file, creating it if needed. Caller holds mu.
func (l *Ledger) entry(file string) *entry {
	e, ok := l.entries[file]
	if !ok {
		e = &entry{}
		l.entries[file] = e
	}
	return e
}

// Report is the aggregate saved-time summary.
type Report struct {
	OriginalTotal  time.Duration
	CondensedTotal time.Duration
	SavedTotal     time.Duration
	SavedPercent   float64
	// PercentValid is false when the original total is too small for a
	// meaningful percentage.
	PercentValid bool
	// MeasuredCount is the number of files with both measurements present.
	MeasuredCount int
}

// Report computes the aggregate totals over fully-measured files.
func (l *Ledger) Report() Report {
	l.mu.Lock()
	defer l.mu.Unlock()

	var r Report
	for _, e := range l.entries {
		if !e.hasOrig || !e.hasCond {
			continue
		}
		r.OriginalTotal += e.original
		r.CondensedTotal += e.condensed
		r.MeasuredCount++
	}

	r.SavedTotal = r.OriginalTotal - r.CondensedTotal
	if r.OriginalTotal > minReportableOriginal {
		r.SavedPercent = 100 * float64(r.SavedTotal) / float64(r.OriginalTotal)
		r.PercentValid = true
	}
	return r
}
