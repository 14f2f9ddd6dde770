// Package condense runs input files through ffmpeg with the composed filter
// chain and splits condensed output into fixed-length segments.
package condense

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-condense/internal/config"
	"github.com/alnah/go-condense/internal/filter"
)

// Processor produces the condensed output for one input file.
type Processor struct {
	ffmpegPath string
	dryRun     bool
	cmd        commandRunner
	log        hclog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorCommandRunner sets the command runner (for testing).
func WithProcessorCommandRunner(r commandRunner) ProcessorOption {
	return func(p *Processor) { p.cmd = r }
}

// WithProcessorLogger sets the logger.
func WithProcessorLogger(l hclog.Logger) ProcessorOption {
	return func(p *Processor) { p.log = l }
}

// WithDryRun makes Process log the equivalent invocation and write an empty
// placeholder instead of invoking the engine.
func WithDryRun(dry bool) ProcessorOption {
	return func(p *Processor) { p.dryRun = dry }
}

// NewProcessor creates a Processor bound to an ffmpeg binary.
func NewProcessor(ffmpegPath string, opts ...ProcessorOption) (*Processor, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty")
	}
	p := &Processor{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
		log:        hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process condenses input into output using the filter chain and the
// encoding parameters from cfg. Video streams are always stripped and an
// existing output is overwritten.
//
// A non-zero engine exit wraps ErrEngineFailed: terminal for this file,
// non-fatal for the run.
func (p *Processor) Process(ctx context.Context, input, output string, cfg config.Config, chain filter.Chain) error {
	if err := config.EnsureDir(filepath.Dir(output)); err != nil {
		return err
	}

	args := buildTransformArgs(input, output, cfg, chain)

	if p.dryRun {
		p.log.Info("dry run: would invoke engine", "argv", argvString(p.ffmpegPath, args))
		return writePlaceholder(output)
	}

	stderr, err := p.cmd.Run(ctx, p.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: %s (exit %s): %s",
			ErrEngineFailed, filepath.Base(input), exitCode(err), lastLine(stderr))
	}

	p.log.Debug("condensed file", "input", input, "output", output)
	return nil
}

// buildTransformArgs assembles the ffmpeg argument list.
// Always an argv slice, never a shell string.
func buildTransformArgs(input, output string, cfg config.Config, chain filter.Chain) []string {
	args := []string{
		"-y",
		"-i", input,
		"-vn",
		"-af", chain.String(),
		"-c:a", cfg.Codec(),
	}
	// PCM output has no bitrate parameter.
	if cfg.OutputFormat != config.FormatWAV {
		args = append(args, "-b:a", cfg.Bitrate)
	}
	args = append(args,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		output,
	)
	return args
}

// writePlaceholder creates an empty stand-in output file for dry runs.
func writePlaceholder(path string) error {
	return os.WriteFile(path, nil, 0644) // #nosec G306 -- output artifact
}

// argvString renders an argument list for dry-run display.
func argvString(name string, args []string) string {
	return name + " " + strings.Join(args, " ")
}

// exitCode extracts the engine's exit code for error messages.
func exitCode(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return strconv.Itoa(exitErr.ExitCode())
	}
	return "?"
}

// lastLine returns the last non-empty line of s; ffmpeg puts the actual
// failure reason at the end of its stderr stream.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return "no output"
}
