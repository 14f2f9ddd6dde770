package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-condense/internal/batch"
	"github.com/alnah/go-condense/internal/cli"
	"github.com/alnah/go-condense/internal/config"
	"github.com/alnah/go-condense/internal/ffmpeg"
	"github.com/alnah/go-condense/internal/lang"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes. Per-file failures never affect the exit status; a batch run
// that completes with some broken files is still a success.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "condense",
		Short:   "Condense media files by removing silence, retiming, and re-encoding",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Subcommands.
	rootCmd.AddCommand(cli.FileCmd(env))
	rootCmd.AddCommand(cli.BatchCmd(env))
	rootCmd.AddCommand(cli.HereCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps startup errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors: Cobra flag/arg parsing failures.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: the mandatory engine is unavailable.
	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, cli.ErrLogFile) {
		return ExitSetup
	}

	// Validation errors: bad configuration or input, caught before any file
	// is touched.
	if errors.Is(err, config.ErrInvalid) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrUnsupportedFormat) ||
		errors.Is(err, cli.ErrNotADirectory) || errors.Is(err, batch.ErrRootMissing) ||
		errors.Is(err, batch.ErrBadPattern) || errors.Is(err, batch.ErrNoFiles) {
		return ExitValidation
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors. Cobra doesn't expose typed errors, so string matching
// is the only reliable approach; these patterns are stable across versions.
var cobraUsageErrorPatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"unknown command",
	"flag needs an argument",
	"invalid argument",
	"accepts ",
	"requires at least",
	"requires at most",
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
