package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Output formats.
const (
	FormatMP3  = "mp3"
	FormatOpus = "opus"
	FormatOGG  = "ogg"
	FormatWAV  = "wav"
)

// Transcription backends.
const (
	TranscribeNone  = "none"
	TranscribeLocal = "local"
	TranscribeAPI   = "api"
)

// Defaults for the processing configuration.
const (
	DefaultSilenceThresholdDB = -30.0
	DefaultMinSilence         = 500 * time.Millisecond
	DefaultTempoRate          = 1.0
	DefaultFormat             = FormatMP3
	DefaultBitrate            = "128k"
	DefaultChannels           = 2
	DefaultSampleRate         = 44100
	DefaultWhisperModel       = "medium"
	DefaultLogLevel           = "info"
)

// Config is the immutable per-run processing configuration.
// It is constructed once at startup from flags, environment, and the config
// file, validated, and then passed by value into every component; nothing
// reads ambient global state after that.
type Config struct {
	SilenceThresholdDB float64       `validate:"gte=-120,lte=0"`
	MinSilence         time.Duration `validate:"gte=0"`
	TempoRate          float64       `validate:"gt=0"`
	Normalize          bool
	Denoise            bool

	OutputFormat string `validate:"oneof=mp3 opus ogg wav"`
	Bitrate      string `validate:"required"`
	Channels     int    `validate:"gte=1,lte=8"`
	SampleRate   int    `validate:"gte=8000,lte=192000"`

	// SegmentLength splits the condensed output into fixed chunks.
	// Zero disables segmentation.
	SegmentLength time.Duration `validate:"gte=0"`

	Transcription string `validate:"oneof=none local api"`
	WhisperModel  string
	Language      string // empty = auto-detect; validated by the lang package
	APIKey        string

	FilterPattern string
	LogLevel      string
	LogFile       string
	DryRun        bool

	// Parallel bounds the number of files condensed concurrently.
	Parallel int `validate:"gte=1,lte=8"`
}

// Default returns a Config populated with the documented defaults.
func Default() Config {
	return Config{
		SilenceThresholdDB: DefaultSilenceThresholdDB,
		MinSilence:         DefaultMinSilence,
		TempoRate:          DefaultTempoRate,
		OutputFormat:       DefaultFormat,
		Bitrate:            DefaultBitrate,
		Channels:           DefaultChannels,
		SampleRate:         DefaultSampleRate,
		Transcription:      TranscribeNone,
		WhisperModel:       DefaultWhisperModel,
		LogLevel:           DefaultLogLevel,
		Parallel:           1,
	}
}

// validate is shared across calls; the validator caches struct metadata.
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks the configuration before any file is touched.
// A violation is an InvalidInput condition: the run aborts.
func (c Config) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: field %s fails %q (value %v)",
				ErrInvalid, f.Field(), f.Tag(), f.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	// mode=api with no resolvable key silently disables transcription rather
	// than failing: missing credentials are an expected operational gap.
	return nil
}

// Codec maps the output format to the ffmpeg encoder name.
func (c Config) Codec() string {
	switch c.OutputFormat {
	case FormatOpus:
		return "libopus"
	case FormatOGG:
		return "libvorbis"
	case FormatWAV:
		return "pcm_s16le"
	default:
		return "libmp3lame"
	}
}
