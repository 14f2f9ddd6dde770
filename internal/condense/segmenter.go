package condense

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-condense/internal/config"
)

// Segmenter splits a condensed file into fixed-duration chunks without
// re-encoding.
type Segmenter struct {
	ffmpegPath string
	dryRun     bool
	cmd        commandRunner
	files      fileStatter
	log        hclog.Logger
}

// SegmenterOption configures a Segmenter.
type SegmenterOption func(*Segmenter)

// WithSegmenterCommandRunner sets the command runner (for testing).
func WithSegmenterCommandRunner(r commandRunner) SegmenterOption {
	return func(s *Segmenter) { s.cmd = r }
}

// WithSegmenterFileStatter sets the file statter (for testing).
func WithSegmenterFileStatter(f fileStatter) SegmenterOption {
	return func(s *Segmenter) { s.files = f }
}

// WithSegmenterLogger sets the logger.
func WithSegmenterLogger(l hclog.Logger) SegmenterOption {
	return func(s *Segmenter) { s.log = l }
}

// WithSegmenterDryRun makes Segment log the equivalent invocation only.
func WithSegmenterDryRun(dry bool) SegmenterOption {
	return func(s *Segmenter) { s.dryRun = dry }
}

// NewSegmenter creates a Segmenter bound to an ffmpeg binary.
func NewSegmenter(ffmpegPath string, opts ...SegmenterOption) (*Segmenter, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty")
	}
	s := &Segmenter{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
		files:      osFileStatter{},
		log:        hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Segment splits condensedFile into chunks of segmentLength each, written as
// outputPattern (an ffmpeg %03d pattern). Stream-copy only: no re-encoding,
// timestamps reset per chunk.
//
// Failure here is a warning condition for callers; it never marks the file's
// primary processing as failed.
func (s *Segmenter) Segment(ctx context.Context, condensedFile, outputPattern string, segmentLength time.Duration) error {
	args := []string{
		"-y",
		"-i", condensedFile,
		"-f", "segment",
		"-segment_time", strconv.Itoa(int(segmentLength.Seconds())),
		"-c", "copy",
		"-reset_timestamps", "1",
		outputPattern,
	}

	if s.dryRun {
		s.log.Info("dry run: would segment", "argv", argvString(s.ffmpegPath, args))
		return nil
	}

	// The condensed file must exist before the engine is invoked; a missing
	// input here means the processing stage silently produced nothing.
	if _, err := s.files.Stat(condensedFile); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingInput, condensedFile)
	}

	if err := config.EnsureDir(filepath.Dir(outputPattern)); err != nil {
		return err
	}

	stderr, err := s.cmd.Run(ctx, s.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: %s (exit %s): %s",
			ErrEngineFailed, filepath.Base(condensedFile), exitCode(err), lastLine(stderr))
	}

	s.log.Debug("segmented file", "input", condensedFile, "pattern", outputPattern)
	return nil
}
