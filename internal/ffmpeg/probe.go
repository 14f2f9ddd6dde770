package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// defaultProbeTimeout bounds the metadata query. ffprobe normally answers in
// well under a second; a hang here means a damaged file or a stuck mount.
const defaultProbeTimeout = 10 * time.Second

// Prober queries media durations via ffprobe.
type Prober struct {
	ffprobePath string
	timeout     time.Duration
	cmd         commandRunner
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeTimeout sets the per-query deadline.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProbeCommandRunner sets the command runner (for testing).
func WithProbeCommandRunner(c commandRunner) ProberOption {
	return func(p *Prober) { p.cmd = c }
}

// NewProber creates a Prober for the given ffprobe binary.
func NewProber(ffprobePath string, opts ...ProberOption) (*Prober, error) {
	if ffprobePath == "" {
		return nil, fmt.Errorf("ffprobePath cannot be empty: %w", ErrNotFound)
	}
	p := &Prober{
		ffprobePath: ffprobePath,
		timeout:     defaultProbeTimeout,
		cmd:         osCommandRunner{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Probe returns the duration of a media file.
//
// Failures are classified via the ErrProbe* sentinels and are non-fatal by
// contract: callers treat any error as "duration unknown", log a warning,
// and continue processing the file.
func (p *Prober) Probe(ctx context.Context, path string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	stdout, stderr, err := p.cmd.Run(ctx, p.ffprobePath, args)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return 0, fmt.Errorf("%w after %v: %s", ErrProbeTimeout, p.timeout, path)
		case errors.Is(err, exec.ErrNotFound):
			return 0, fmt.Errorf("%w: %v", ErrProbeToolMissing, err)
		default:
			return 0, fmt.Errorf("%w: %s: %v (%s)",
				ErrProbeFailed, path, err, firstLine(stderr))
		}
	}

	return parseDuration(stdout)
}

// parseDuration parses ffprobe's bare decimal duration output.
func parseDuration(out string) (time.Duration, error) {
	trimmed := strings.TrimSpace(out)
	secs, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("%w: %q", ErrProbeInvalidOutput, trimmed)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// firstLine returns the first non-empty line of s for compact error messages.
func firstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return "no output"
}
