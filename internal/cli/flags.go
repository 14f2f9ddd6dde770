package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/alnah/go-condense/internal/batch"
	"github.com/alnah/go-condense/internal/config"
	"github.com/alnah/go-condense/internal/lang"
)

// condenseFlags holds the flag values shared by the file, batch, and here
// commands. They map one-to-one onto config.Config.
type condenseFlags struct {
	output string

	silenceThreshold float64
	minSilence       time.Duration
	tempo            float64
	normalize        bool
	denoise          bool

	format     string
	bitrate    string
	channels   int
	sampleRate int

	segmentLength time.Duration

	transcription string
	whisperModel  string
	language      string

	filter   string
	parallel int
	dryRun   bool

	logLevel string
	logFile  string
}

// register wires the shared flag set onto cmd.
func (f *condenseFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()

	fl.StringVarP(&f.output, "output", "o", "", "Output directory (default: <input>/condensed)")

	fl.Float64Var(&f.silenceThreshold, "silence-threshold", config.DefaultSilenceThresholdDB,
		"Silence threshold in dB")
	fl.DurationVar(&f.minSilence, "min-silence", config.DefaultMinSilence,
		"Minimum silence gap to remove (e.g. 500ms, 1s)")
	fl.Float64VarP(&f.tempo, "tempo", "t", config.DefaultTempoRate,
		"Playback rate, e.g. 1.5 (rates outside 0.5-2.0 are chained)")
	fl.BoolVar(&f.normalize, "normalize", false, "Normalize loudness")
	fl.BoolVar(&f.denoise, "denoise", false, "Reduce background noise")

	fl.StringVarP(&f.format, "format", "f", config.DefaultFormat,
		"Output audio format: mp3, opus, ogg, wav")
	fl.StringVarP(&f.bitrate, "bitrate", "b", config.DefaultBitrate, "Audio bitrate, e.g. 128k")
	fl.IntVar(&f.channels, "channels", config.DefaultChannels, "Audio channels")
	fl.IntVar(&f.sampleRate, "sample-rate", config.DefaultSampleRate, "Sample rate in Hz")

	fl.DurationVar(&f.segmentLength, "segment-length", 0,
		"Split output into chunks of this length (e.g. 10m); 0 disables")

	fl.StringVar(&f.transcription, "transcribe", config.TranscribeNone,
		"Transcription backend: none, local, api")
	fl.StringVar(&f.whisperModel, "whisper-model", config.DefaultWhisperModel,
		"Whisper model for local transcription")
	fl.StringVarP(&f.language, "language", "l", "",
		"Audio language (ISO 639-1 code, e.g. en, fr, pt-BR); empty = auto-detect")

	fl.StringVar(&f.filter, "filter", "", "Only process files whose name matches this glob")
	fl.IntVarP(&f.parallel, "parallel", "p", 1, "Files condensed concurrently (1-8)")
	fl.BoolVarP(&f.dryRun, "dry-run", "n", false, "Log planned work without invoking the engine")

	fl.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel,
		"Log level: trace, debug, info, warn, error")
	fl.StringVar(&f.logFile, "log-file", "", "Write logs to this file instead of stderr")
}

// config converts the flag values into a validated run configuration.
func (f *condenseFlags) config() (config.Config, error) {
	cfg := config.Default()
	cfg.SilenceThresholdDB = f.silenceThreshold
	cfg.MinSilence = f.minSilence
	cfg.TempoRate = f.tempo
	cfg.Normalize = f.normalize
	cfg.Denoise = f.denoise
	cfg.OutputFormat = f.format
	cfg.Bitrate = f.bitrate
	cfg.Channels = f.channels
	cfg.SampleRate = f.sampleRate
	cfg.SegmentLength = f.segmentLength
	cfg.Transcription = f.transcription
	cfg.WhisperModel = f.whisperModel
	cfg.Language = lang.Normalize(f.language)
	cfg.FilterPattern = f.filter
	cfg.Parallel = f.parallel
	cfg.DryRun = f.dryRun
	cfg.LogLevel = f.logLevel
	cfg.LogFile = f.logFile

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if err := lang.Validate(cfg.Language); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveOutputRoot picks the output directory: the -o flag wins, then the
// CONDENSE_OUTPUT_DIR environment, then the persisted output-dir setting,
// then fallback.
func resolveOutputRoot(env *Env, settings config.Env, flagValue, fallback string) string {
	if flagValue != "" {
		return config.ExpandPath(flagValue)
	}
	if settings.OutputDir != "" {
		return config.ExpandPath(settings.OutputDir)
	}
	if stored, err := env.Settings.StoredOutputDir(); err == nil && stored != "" {
		return config.ExpandPath(stored)
	}
	return fallback
}

// newLogger builds the run logger from the configuration. The returned
// closer releases the log file, if any.
func newLogger(env *Env, cfg config.Config) (hclog.Logger, func(), error) {
	var out io.Writer = env.Stderr
	closer := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // #nosec G302 G304 -- user-chosen log file
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrLogFile, cfg.LogFile, err)
		}
		out = f
		closer = func() { _ = f.Close() }
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:   "condense",
		Level:  hclog.LevelFromString(cfg.LogLevel),
		Output: out,
	})
	return log, closer, nil
}

// loadSettings reads the environment-sourced settings, downgrading a read
// failure to a warning.
func loadSettings(ctx context.Context, env *Env) config.Env {
	settings, err := env.Settings.Environment(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to read environment settings: %v\n", err)
	}
	return settings
}

// execute resolves the mandatory engine binaries and runs the pipeline over
// the discovered files. Called by all three run modes after discovery.
func execute(ctx context.Context, env *Env, cfg config.Config, settings config.Env,
	outputRoot string, files []batch.MediaFile) error {

	ffmpegPath, err := env.Resolver.ResolveFFmpeg()
	if err != nil {
		return err
	}
	ffprobePath, err := env.Resolver.ResolveFFprobe()
	if err != nil {
		return err
	}
	env.Resolver.CheckVersion(ctx, ffmpegPath)

	log, closeLog, err := newLogger(env, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	deps := RunDeps{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		WhisperPath: whisperPath(settings),
		APIKey:      settings.OpenAIKey,
		Log:         log,
		Out:         env.Stdout,
	}

	_, _, err = env.Runner.Run(ctx, cfg, batch.Layout{OutputRoot: outputRoot}, files, deps)
	return err
}

// whisperPath resolves the local whisper binary: WHISPER_PATH wins, then a
// PATH lookup. An empty result makes the local backend soft-skip every file
// with a "not installed" reason instead of failing the run.
func whisperPath(settings config.Env) string {
	if settings.WhisperPath != "" {
		return settings.WhisperPath
	}
	if p, err := exec.LookPath("whisper"); err == nil {
		return p
	}
	return ""
}
