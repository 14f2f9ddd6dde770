package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-condense/internal/batch"
)

// FileCmd creates the single-file command.
// The env parameter provides injectable dependencies for testing.
func FileCmd(env *Env) *cobra.Command {
	var flags condenseFlags

	cmd := &cobra.Command{
		Use:   "file <media-file>",
		Short: "Condense a single media file",
		Long: `Condense a single audio or video file: remove silence, optionally retime,
normalize, denoise, re-encode, segment, and transcribe.

The condensed file is written next to the input under a condensed/ directory
unless -o overrides the destination.

Supported formats: ` + strings.Join(batch.Extensions(), ", "),
		Example: `  condense file lecture.mkv
  condense file podcast.mp3 -t 1.5 --normalize
  condense file interview.wav -f opus --transcribe api -l en
  condense file talk.mp4 --segment-length 10m -o ~/condensed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd, env, args[0], &flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runFile validates the input and runs the pipeline on a singleton set.
// Validation order: file exists -> format -> config -> engine.
func runFile(cmd *cobra.Command, env *Env, inputPath string, flags *condenseFlags) error {
	ctx := cmd.Context()

	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory (use: condense batch)", ErrFileNotFound, inputPath)
	}

	if !batch.IsMediaFile(inputPath) {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			filepath.Ext(inputPath), strings.Join(batch.Extensions(), ", "), ErrUnsupportedFormat)
	}

	cfg, err := flags.config()
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}

	settings := loadSettings(ctx, env)
	outputRoot := resolveOutputRoot(env, settings, flags.output,
		filepath.Join(filepath.Dir(abs), "condensed"))

	base := filepath.Base(abs)
	file := batch.MediaFile{
		Path:   abs,
		RelDir: ".",
		Base:   strings.TrimSuffix(base, filepath.Ext(base)),
	}

	return execute(ctx, env, cfg, settings, outputRoot, []batch.MediaFile{file})
}
