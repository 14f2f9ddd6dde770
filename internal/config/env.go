package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Env holds settings sourced from the environment.
// Flags take precedence; these fill gaps the user did not spell out.
type Env struct {
	// OpenAIKey authenticates the API transcription backend.
	OpenAIKey string `env:"OPENAI_API_KEY"`

	// OutputDir is the default output root when none is given on the
	// command line or in the config file.
	OutputDir string `env:"CONDENSE_OUTPUT_DIR"`

	// WhisperPath overrides PATH lookup for the local whisper CLI.
	WhisperPath string `env:"WHISPER_PATH"`
}

// LoadEnv reads environment-sourced settings.
func LoadEnv(ctx context.Context) (Env, error) {
	var e Env
	if err := envconfig.Process(ctx, &e); err != nil {
		return Env{}, fmt.Errorf("read environment: %w", err)
	}
	return e, nil
}
