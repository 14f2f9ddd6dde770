package run

import (
	"time"

	"github.com/alnah/go-condense/internal/batch"
)

// Stage statuses recorded per file. A file that never reaches a stage keeps
// the stage's zero value, which is always the "did not run" reading.
type (
	ProcessStatus    int
	SegmentStatus    int
	TranscribeStatus int
)

const (
	ProcessPending ProcessStatus = iota
	ProcessOK
	ProcessFailed
)

const (
	SegmentSkipped SegmentStatus = iota
	SegmentOK
	SegmentFailed
)

const (
	TranscribeSkipped TranscribeStatus = iota
	TranscribeOK
	TranscribeSoftSkipped
	TranscribeFailed
)

func (s ProcessStatus) String() string {
	switch s {
	case ProcessOK:
		return "ok"
	case ProcessFailed:
		return "error"
	default:
		return "pending"
	}
}

func (s SegmentStatus) String() string {
	switch s {
	case SegmentOK:
		return "ok"
	case SegmentFailed:
		return "error"
	default:
		return "skipped"
	}
}

func (s TranscribeStatus) String() string {
	switch s {
	case TranscribeOK:
		return "ok"
	case TranscribeSoftSkipped:
		return "soft-skip"
	case TranscribeFailed:
		return "error"
	default:
		return "skipped"
	}
}

// FileResult is the per-file outcome record. It is created when a file
// enters the pipeline and finalized when the file leaves it; nothing
// mutates it after the run.
type FileResult struct {
	File batch.MediaFile

	// Durations are present only when the matching probe succeeded.
	Original     time.Duration
	HasOriginal  bool
	Condensed    time.Duration
	HasCondensed bool

	FilteredOut bool

	Process    ProcessStatus
	ProcessErr error

	Segment    SegmentStatus
	SegmentErr error

	Transcribe       TranscribeStatus
	TranscribeReason string
	TranscribeErr    error
}

// Stats are the run-level counters rendered in the final summary.
type Stats struct {
	Discovered  int
	FilteredOut int

	Processed     int
	ProcessFailed int

	Segmented     int
	SegmentFailed int

	Transcribed        int
	TranscribeSkipped  int
	TranscribeFailures int
}

// tally folds one finalized result into the counters.
func (s *Stats) tally(r *FileResult) {
	s.Discovered++
	if r.FilteredOut {
		s.FilteredOut++
		return
	}

	switch r.Process {
	case ProcessOK:
		s.Processed++
	case ProcessFailed:
		s.ProcessFailed++
	}

	switch r.Segment {
	case SegmentOK:
		s.Segmented++
	case SegmentFailed:
		s.SegmentFailed++
	}

	switch r.Transcribe {
	case TranscribeOK:
		s.Transcribed++
	case TranscribeSoftSkipped:
		s.TranscribeSkipped++
	case TranscribeFailed:
		s.TranscribeFailures++
	}
}
