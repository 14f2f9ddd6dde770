// Package run drives the per-file pipeline over a discovered file set and
// renders the saved-time report.
//
// Notes:
//   - Condensing and transcription are two separate passes. A systemic
//     transcription failure (missing credentials, missing whisper) found
//     mid-run can then never interleave with, or abort, the condensing work.
//   - Per-file failures are recorded and logged, never returned: a batch run
//     that finishes with some broken files is still a successful run.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-condense/internal/batch"
	"github.com/alnah/go-condense/internal/config"
	"github.com/alnah/go-condense/internal/filter"
	"github.com/alnah/go-condense/internal/format"
	"github.com/alnah/go-condense/internal/ledger"
	"github.com/alnah/go-condense/internal/transcribe"
)

// Collaborator seams. The concrete ffmpeg-backed implementations live in
// internal/ffmpeg and internal/condense.
type (
	prober interface {
		Probe(ctx context.Context, path string) (time.Duration, error)
	}

	processor interface {
		Process(ctx context.Context, input, output string, cfg config.Config, chain filter.Chain) error
	}

	segmenter interface {
		Segment(ctx context.Context, condensedFile, outputPattern string, segmentLength time.Duration) error
	}
)

// Orchestrator runs the condense and transcribe passes over a file set.
type Orchestrator struct {
	cfg    config.Config
	layout batch.Layout

	prober    prober
	processor processor
	segmenter segmenter
	trans     transcribe.Transcriber

	ledger *ledger.Ledger
	log    hclog.Logger
	out    io.Writer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSegmenter enables segmentation of condensed output.
func WithSegmenter(s segmenter) Option {
	return func(o *Orchestrator) { o.segmenter = s }
}

// WithTranscriber enables the transcription pass.
func WithTranscriber(t transcribe.Transcriber) Option {
	return func(o *Orchestrator) { o.trans = t }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithOutput sets the writer for the final report. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// New creates an Orchestrator. The prober and processor are mandatory;
// segmentation and transcription are opted in per configuration.
func New(cfg config.Config, layout batch.Layout, p prober, proc processor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		layout:    layout,
		prober:    p,
		processor: proc,
		ledger:    ledger.New(),
		log:       hclog.NewNullLogger(),
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the pipeline over files and renders the final report.
// The returned error reflects only the inability to run at all; per-file
// failures are captured in the results and counters.
func (o *Orchestrator) Run(ctx context.Context, files []batch.MediaFile) (Stats, []FileResult, error) {
	results := make([]FileResult, len(files))
	active := make([]*FileResult, 0, len(files))

	for i, f := range files {
		results[i] = FileResult{File: f}
		r := &results[i]

		ok, err := batch.MatchesFilter(o.cfg.FilterPattern, f)
		if err != nil {
			return Stats{}, nil, err
		}
		if !ok {
			r.FilteredOut = true
			o.log.Debug("filtered out", "file", f.Path, "pattern", o.cfg.FilterPattern)
			continue
		}
		active = append(active, r)
	}

	if len(active) == 0 {
		return Stats{}, nil, fmt.Errorf("%w: %d filtered out by pattern %q",
			batch.ErrNoFiles, len(files), o.cfg.FilterPattern)
	}

	chain := o.buildChain()

	// Pass 1: condense (with optional segmentation), bounded parallelism.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Parallel)
	for _, r := range active {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o.condenseOne(gctx, r, chain)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Only cancellation escapes the workers.
		return Stats{}, nil, err
	}

	// Pass 2: transcribe originals of every successfully condensed file.
	for _, r := range active {
		if err := ctx.Err(); err != nil {
			return Stats{}, nil, err
		}
		o.transcribeOne(ctx, r)
	}

	var stats Stats
	for i := range results {
		stats.tally(&results[i])
	}

	o.writeReport(stats)
	return stats, results, nil
}

// buildChain assembles the audio filter chain once for the whole run.
func (o *Orchestrator) buildChain() filter.Chain {
	plan := filter.PlanTempo(o.cfg.TempoRate, func(msg string) {
		o.log.Warn(msg)
	})
	return filter.BuildChain(filter.Params{
		SilenceThresholdDB: o.cfg.SilenceThresholdDB,
		MinSilence:         o.cfg.MinSilence,
		Normalize:          o.cfg.Normalize,
		Denoise:            o.cfg.Denoise,
	}, plan)
}

// condenseOne walks a single file through measure, process, re-measure, and
// segment. A processing failure is terminal for the file.
func (o *Orchestrator) condenseOne(ctx context.Context, r *FileResult, chain filter.Chain) {
	f := r.File
	output := o.layout.OutputPath(f, o.cfg.OutputFormat)

	if !o.cfg.DryRun {
		if d, err := o.prober.Probe(ctx, f.Path); err != nil {
			o.log.Warn("duration probe failed", "file", f.Path, "error", err)
		} else {
			r.Original = d
			r.HasOriginal = true
		}
	}

	if err := o.processor.Process(ctx, f.Path, output, o.cfg, chain); err != nil {
		r.Process = ProcessFailed
		r.ProcessErr = err
		o.log.Error("processing failed", "file", f.Path, "error", err)
		return
	}
	r.Process = ProcessOK

	if !o.cfg.DryRun {
		if d, err := o.prober.Probe(ctx, output); err != nil {
			o.log.Warn("duration probe failed", "file", output, "error", err)
		} else {
			r.Condensed = d
			r.HasCondensed = true
		}
		if r.HasOriginal && r.HasCondensed {
			o.ledger.RecordOriginal(f.Path, r.Original)
			o.ledger.RecordCondensed(f.Path, r.Condensed)
		}
	}

	if o.segmenter != nil && o.cfg.SegmentLength > 0 {
		pattern := o.layout.SegmentPattern(f, o.cfg.OutputFormat)
		if err := o.segmenter.Segment(ctx, output, pattern, o.cfg.SegmentLength); err != nil {
			r.Segment = SegmentFailed
			r.SegmentErr = err
			o.log.Warn("segmentation failed", "file", output, "error", err)
		} else {
			r.Segment = SegmentOK
		}
	}
}

// transcribeOne runs the transcription backend on the ORIGINAL input of a
// successfully condensed file.
func (o *Orchestrator) transcribeOne(ctx context.Context, r *FileResult) {
	if o.trans == nil || r.Process != ProcessOK {
		return
	}

	out := o.trans.Transcribe(ctx, r.File.Path, o.layout.TranscriptDir(r.File))
	switch out.Kind {
	case transcribe.KindSuccess:
		r.Transcribe = TranscribeOK
	case transcribe.KindSoftSkip:
		r.Transcribe = TranscribeSoftSkipped
		r.TranscribeReason = out.Reason
		o.log.Warn("transcription skipped", "file", r.File.Path, "reason", out.Reason)
	case transcribe.KindHardError:
		r.Transcribe = TranscribeFailed
		r.TranscribeErr = out.Err
		o.log.Error("transcription failed", "file", r.File.Path, "error", out.Err)
	}
}

// writeReport renders the run summary and the saved-time totals.
func (o *Orchestrator) writeReport(stats Stats) {
	w := o.out

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files:       %d discovered", stats.Discovered)
	if stats.FilteredOut > 0 {
		fmt.Fprintf(w, ", %d filtered out", stats.FilteredOut)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Processed:   %d ok, %d failed\n", stats.Processed, stats.ProcessFailed)
	if stats.Segmented > 0 || stats.SegmentFailed > 0 {
		fmt.Fprintf(w, "Segmented:   %d ok, %d failed\n", stats.Segmented, stats.SegmentFailed)
	}
	if stats.Transcribed > 0 || stats.TranscribeSkipped > 0 || stats.TranscribeFailures > 0 {
		fmt.Fprintf(w, "Transcribed: %d ok, %d skipped, %d failed\n",
			stats.Transcribed, stats.TranscribeSkipped, stats.TranscribeFailures)
	}

	if o.cfg.DryRun {
		fmt.Fprintln(w, "Dry run: duration calculation skipped.")
		return
	}

	rep := o.ledger.Report()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Original:  %s\n", format.Clock(rep.OriginalTotal))
	fmt.Fprintf(w, "Condensed: %s\n", format.Clock(rep.CondensedTotal))
	if rep.PercentValid {
		fmt.Fprintf(w, "Saved:     %s (%s of %d measured files)\n",
			format.Clock(rep.SavedTotal), format.Percent(rep.SavedPercent), rep.MeasuredCount)
	} else {
		fmt.Fprintf(w, "Saved:     %s (percentage n/a, %d measured files)\n",
			format.Clock(rep.SavedTotal), rep.MeasuredCount)
	}
}
