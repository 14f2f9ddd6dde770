package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/go-condense/internal/batch"
)

// BatchCmd creates the explicit-batch command.
// The env parameter provides injectable dependencies for testing.
func BatchCmd(env *Env) *cobra.Command {
	var flags condenseFlags

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Condense every media file under a directory",
		Long: `Recursively scan a directory and condense every recognized media file.

The input directory structure is mirrored under the output root: a file at
<dir>/Sub/Ep1.mkv lands at <output>/Sub/Ep1.<format>, its segments under
<output>/Sub/segmented/, and its transcript under <output>/transcripts/Sub/.

A failure on one file never stops the others; the run ends with a summary
of processed files and total time saved.`,
		Example: `  condense batch ~/media/course
  condense batch ./season1 --filter 'Ep*.mkv' -t 1.5
  condense batch ./podcasts -f opus --transcribe local -p 4
  condense batch ./talks --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, env, args[0], &flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runBatch discovers the tree recursively and runs the pipeline over it.
func runBatch(cmd *cobra.Command, env *Env, root string, flags *condenseFlags) error {
	ctx := cmd.Context()

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", batch.ErrRootMissing, root)
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s (use: condense file)", ErrNotADirectory, root)
	}

	cfg, err := flags.config()
	if err != nil {
		return err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}

	settings := loadSettings(ctx, env)
	outputRoot := resolveOutputRoot(env, settings, flags.output,
		filepath.Join(absRoot, "condensed"))

	files, err := batch.Discover(absRoot, batch.Options{
		Recursive: true,
		Exclude:   []string{outputRoot},
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no media files under %s", batch.ErrNoFiles, root)
	}

	fmt.Fprintf(env.Stderr, "Found %d media files under %s\n", len(files), root)
	return execute(ctx, env, cfg, settings, outputRoot, files)
}
