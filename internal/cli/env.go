package cli

import (
	"context"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-condense/internal/batch"
	"github.com/alnah/go-condense/internal/condense"
	"github.com/alnah/go-condense/internal/config"
	"github.com/alnah/go-condense/internal/ffmpeg"
	"github.com/alnah/go-condense/internal/run"
	"github.com/alnah/go-condense/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing commands in isolation.
//
// All fields have production defaults via DefaultEnv(); tests override
// individual fields with the With* options.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Getenv func(string) string

	// Factories and collaborators
	Resolver EngineResolver
	Settings SettingsLoader
	Runner   PipelineRunner
}

// EngineResolver locates the media engine binaries.
type EngineResolver interface {
	ResolveFFmpeg() (string, error)
	ResolveFFprobe() (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string) bool
}

// SettingsLoader provides environment-sourced settings and the persisted
// configuration file.
type SettingsLoader interface {
	Environment(ctx context.Context) (config.Env, error)
	StoredOutputDir() (string, error)
}

// RunDeps carries the resolved external-tool paths and run-scoped wiring
// into the pipeline.
type RunDeps struct {
	FFmpegPath  string
	FFprobePath string
	WhisperPath string
	APIKey      string

	Log hclog.Logger
	Out io.Writer
}

// PipelineRunner executes the condense/transcribe pipeline over a file set.
type PipelineRunner interface {
	Run(ctx context.Context, cfg config.Config, layout batch.Layout,
		files []batch.MediaFile, deps RunDeps) (run.Stats, []run.FileResult, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithStdin sets the reader used for interactive prompts.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) { e.Stdin = r }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithResolver sets the engine resolver.
func WithResolver(r EngineResolver) EnvOption {
	return func(e *Env) { e.Resolver = r }
}

// WithSettings sets the settings loader.
func WithSettings(s SettingsLoader) EnvOption {
	return func(e *Env) { e.Settings = s }
}

// WithRunner sets the pipeline runner.
func WithRunner(r PipelineRunner) EnvOption {
	return func(e *Env) { e.Runner = r }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Stdin:    os.Stdin,
		Getenv:   os.Getenv,
		Resolver: &defaultEngineResolver{},
		Settings: &defaultSettingsLoader{},
		Runner:   &defaultPipelineRunner{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultEngineResolver implements EngineResolver using the ffmpeg package.
type defaultEngineResolver struct{}

func (defaultEngineResolver) ResolveFFmpeg() (string, error) {
	return ffmpeg.NewResolver().ResolveFFmpeg()
}

func (defaultEngineResolver) ResolveFFprobe() (string, error) {
	return ffmpeg.NewResolver().ResolveFFprobe()
}

func (defaultEngineResolver) CheckVersion(ctx context.Context, ffmpegPath string) bool {
	return ffmpeg.NewResolver().CheckVersion(ctx, ffmpegPath)
}

// defaultSettingsLoader implements SettingsLoader using the config package.
type defaultSettingsLoader struct{}

func (defaultSettingsLoader) Environment(ctx context.Context) (config.Env, error) {
	return config.LoadEnv(ctx)
}

func (defaultSettingsLoader) StoredOutputDir() (string, error) {
	return config.Get(config.KeyOutputDir)
}

// defaultPipelineRunner implements PipelineRunner by assembling the real
// engine-backed collaborators and handing them to the orchestrator.
type defaultPipelineRunner struct{}

func (defaultPipelineRunner) Run(ctx context.Context, cfg config.Config, layout batch.Layout,
	files []batch.MediaFile, deps RunDeps) (run.Stats, []run.FileResult, error) {

	prober, err := ffmpeg.NewProber(deps.FFprobePath)
	if err != nil {
		return run.Stats{}, nil, err
	}

	processor, err := condense.NewProcessor(deps.FFmpegPath,
		condense.WithDryRun(cfg.DryRun),
		condense.WithProcessorLogger(deps.Log))
	if err != nil {
		return run.Stats{}, nil, err
	}

	opts := []run.Option{
		run.WithLogger(deps.Log),
		run.WithOutput(deps.Out),
	}

	if cfg.SegmentLength > 0 {
		segmenter, err := condense.NewSegmenter(deps.FFmpegPath,
			condense.WithSegmenterDryRun(cfg.DryRun),
			condense.WithSegmenterLogger(deps.Log))
		if err != nil {
			return run.Stats{}, nil, err
		}
		opts = append(opts, run.WithSegmenter(segmenter))
	}

	switch cfg.Transcription {
	case config.TranscribeLocal:
		opts = append(opts, run.WithTranscriber(
			transcribe.NewLocalTranscriber(deps.WhisperPath, cfg.WhisperModel, cfg.Language,
				transcribe.WithLocalDryRun(cfg.DryRun),
				transcribe.WithLocalLogger(deps.Log))))
	case config.TranscribeAPI:
		opts = append(opts, run.WithTranscriber(
			transcribe.NewAPITranscriber(deps.APIKey, cfg.Language,
				transcribe.WithAPIDryRun(cfg.DryRun),
				transcribe.WithAPILogger(deps.Log))))
	}

	return run.New(cfg, layout, prober, processor, opts...).Run(ctx, files)
}

// Compile-time interface verification.
var (
	_ EngineResolver = (*defaultEngineResolver)(nil)
	_ SettingsLoader = (*defaultSettingsLoader)(nil)
	_ PipelineRunner = (*defaultPipelineRunner)(nil)
)
