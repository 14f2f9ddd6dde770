package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-condense/internal/batch"
	"github.com/alnah/go-condense/internal/config"
)

// HereCmd creates the interactive command operating on the working directory.
// The env parameter provides injectable dependencies for testing.
func HereCmd(env *Env) *cobra.Command {
	var (
		flags condenseFlags
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "here",
		Short: "Condense the media files in the current directory",
		Long: `Scan the current directory (non-recursively) and condense every media
file found there, after listing them and asking for confirmation.

Options not given on the command line are asked for interactively.
The output directory and the running binary are excluded from the scan,
so re-running never reprocesses generated output.`,
		Example: `  condense here
  condense here -t 1.5 --normalize
  condense here --yes -f opus`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHere(cmd, env, &flags, yes)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// runHere prompts for unset options, scans the working directory, confirms,
// and runs the pipeline.
func runHere(cmd *cobra.Command, env *Env, flags *condenseFlags, yes bool) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	in := bufio.NewScanner(env.Stdin)

	// Fill the options the user left unset.
	if !cmd.Flags().Changed("tempo") {
		flags.tempo = promptFloat(env, in, "Playback rate", flags.tempo)
	}
	if !cmd.Flags().Changed("format") {
		flags.format = promptChoice(env, in, "Output format",
			[]string{config.FormatMP3, config.FormatOpus, config.FormatOGG, config.FormatWAV}, flags.format)
	}
	if !cmd.Flags().Changed("transcribe") {
		flags.transcription = promptChoice(env, in, "Transcription",
			[]string{config.TranscribeNone, config.TranscribeLocal, config.TranscribeAPI}, flags.transcription)
	}

	cfg, err := flags.config()
	if err != nil {
		return err
	}

	settings := loadSettings(ctx, env)
	outputRoot := resolveOutputRoot(env, settings, flags.output,
		filepath.Join(cwd, "condensed"))

	exclude := []string{outputRoot}
	if self, err := os.Executable(); err == nil {
		exclude = append(exclude, self)
	}

	files, err := batch.Discover(cwd, batch.Options{Exclude: exclude})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no media files in %s", batch.ErrNoFiles, cwd)
	}

	fmt.Fprintf(env.Stderr, "Will condense %d files into %s:\n", len(files), outputRoot)
	for _, f := range files {
		fmt.Fprintf(env.Stderr, "  %s\n", filepath.Base(f.Path))
	}

	if !yes && !confirm(env, in) {
		fmt.Fprintln(env.Stderr, "Aborted.")
		return nil
	}

	return execute(ctx, env, cfg, settings, outputRoot, files)
}

// confirm asks for a yes/no answer, defaulting to no.
func confirm(env *Env, in *bufio.Scanner) bool {
	fmt.Fprint(env.Stderr, "Proceed? [y/N] ")
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	return answer == "y" || answer == "yes"
}

// promptFloat asks for a number, keeping the default on empty or bad input.
func promptFloat(env *Env, in *bufio.Scanner, label string, def float64) float64 {
	fmt.Fprintf(env.Stderr, "%s [%g]: ", label, def)
	if !in.Scan() {
		return def
	}
	text := strings.TrimSpace(in.Text())
	if text == "" {
		return def
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Keeping %g (could not parse %q)\n", def, text)
		return def
	}
	return v
}

// promptChoice asks to pick one of choices, keeping the default on empty or
// unrecognized input.
func promptChoice(env *Env, in *bufio.Scanner, label string, choices []string, def string) string {
	fmt.Fprintf(env.Stderr, "%s (%s) [%s]: ", label, strings.Join(choices, "/"), def)
	if !in.Scan() {
		return def
	}
	text := strings.ToLower(strings.TrimSpace(in.Text()))
	if text == "" {
		return def
	}
	for _, c := range choices {
		if text == c {
			return c
		}
	}
	fmt.Fprintf(env.Stderr, "Keeping %s (unrecognized %q)\n", def, text)
	return def
}
