package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-condense/internal/config"
	"github.com/alnah/go-condense/internal/lang"
)

// Transcriber produces a {base}.txt transcript of an input file in outDir.
// It always receives the ORIGINAL input, never the condensed output: silence
// removal and retiming degrade speech recognition accuracy.
type Transcriber interface {
	Transcribe(ctx context.Context, inputPath, outDir string) Outcome
}

// Compile-time interface compliance checks.
var (
	_ Transcriber = (*LocalTranscriber)(nil)
	_ Transcriber = (*APITranscriber)(nil)
)

// LocalTranscriber invokes the whisper CLI.
type LocalTranscriber struct {
	whisperPath string // empty means unavailable: every call soft-skips
	model       string
	language    string
	dryRun      bool
	cmd         commandRunner
	files       fileOps
	log         hclog.Logger
}

// LocalOption configures a LocalTranscriber.
type LocalOption func(*LocalTranscriber)

// WithLocalCommandRunner sets the command runner (for testing).
func WithLocalCommandRunner(r commandRunner) LocalOption {
	return func(t *LocalTranscriber) { t.cmd = r }
}

// WithLocalFileOps sets the filesystem implementation (for testing).
func WithLocalFileOps(f fileOps) LocalOption {
	return func(t *LocalTranscriber) { t.files = f }
}

// WithLocalLogger sets the logger.
func WithLocalLogger(l hclog.Logger) LocalOption {
	return func(t *LocalTranscriber) { t.log = l }
}

// WithLocalDryRun makes Transcribe create a placeholder without invoking
// whisper.
func WithLocalDryRun(dry bool) LocalOption {
	return func(t *LocalTranscriber) { t.dryRun = dry }
}

// NewLocalTranscriber creates a whisper-CLI transcriber.
// whisperPath may be empty when the binary is unavailable; transcription
// then soft-skips per call instead of failing construction, because a
// missing optional tool must not abort a batch run.
func NewLocalTranscriber(whisperPath, model, language string, opts ...LocalOption) *LocalTranscriber {
	t := &LocalTranscriber{
		whisperPath: whisperPath,
		model:       model,
		language:    language,
		cmd:         osCommandRunner{},
		files:       osFileOps{},
		log:         hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe runs whisper on inputPath, directing text output into outDir,
// and normalizes the produced file to {base}.txt.
func (t *LocalTranscriber) Transcribe(ctx context.Context, inputPath, outDir string) Outcome {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	target := filepath.Join(outDir, base+".txt")

	if t.dryRun {
		t.log.Info("dry run: would transcribe locally", "input", inputPath, "output", target)
		if err := writeTranscriptPlaceholder(t.files, outDir, target); err != nil {
			return HardError(err)
		}
		return Success()
	}

	if t.whisperPath == "" {
		return SoftSkip("whisper not installed")
	}

	if err := config.EnsureDir(outDir); err != nil {
		return HardError(err)
	}

	args := []string{
		inputPath,
		"--model", t.model,
		"--output_dir", outDir,
		"--output_format", "txt",
	}
	if code := lang.BaseCode(t.language); code != "" {
		args = append(args, "--language", code)
	}

	out, err := t.cmd.CombinedOutput(ctx, t.whisperPath, args)
	if err != nil {
		return SoftSkip(fmt.Sprintf("whisper failed: %v (%s)", err, lastNonEmptyLine(out)))
	}

	if err := t.normalizeOutput(outDir, base, target); err != nil {
		// Whisper ran and produced SOMETHING; losing track of it is a local
		// fault worth surfacing, not an expected operational gap.
		return HardError(err)
	}

	t.log.Debug("transcribed locally", "input", inputPath, "output", target)
	return Success()
}

// normalizeOutput locates whisper's output file and moves it to target.
// Whisper sometimes appends extra extensions (e.g. "name.en.txt") depending
// on version and flags. Rather than guessing among candidates, anything but
// an unambiguous match fails loudly with the candidate list.
func (t *LocalTranscriber) normalizeOutput(outDir, base, target string) error {
	if _, err := t.files.Stat(target); err == nil {
		return nil
	}

	candidates, err := t.files.Glob(filepath.Join(outDir, base+"*.txt"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputNotFound, err)
	}

	switch len(candidates) {
	case 0:
		return fmt.Errorf("%w: expected %s", ErrOutputNotFound, target)
	case 1:
		if err := t.files.Rename(candidates[0], target); err != nil {
			return fmt.Errorf("%w: rename %s: %v", ErrWriteFailed, candidates[0], err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrOutputAmbiguous, strings.Join(candidates, ", "))
	}
}

// writeTranscriptPlaceholder creates an empty stand-in transcript.
func writeTranscriptPlaceholder(files fileOps, outDir, target string) error {
	if err := config.EnsureDir(outDir); err != nil {
		return err
	}
	if err := files.WriteFile(target, nil, 0644); err != nil { // #nosec G306 -- text artifact
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// lastNonEmptyLine extracts the tail of whisper's combined output for
// compact skip reasons.
func lastNonEmptyLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return "no output"
}
