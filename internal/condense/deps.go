package condense

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// commandRunner executes ffmpeg and returns its stderr output.
// ffmpeg writes all diagnostics to stderr; stdout stays empty.
type commandRunner interface {
	Run(ctx context.Context, name string, args []string) (stderr string, err error)
}

// fileStatter retrieves file information.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// --- Default implementations using real OS functions ---

// Compile-time interface verification.
var (
	_ commandRunner = osCommandRunner{}
	_ fileStatter   = osFileStatter{}
)

// osCommandRunner implements commandRunner using exec.CommandContext.
type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, name string, args []string) (string, error) {
	// #nosec G204 -- name and args are built by this package, not user input
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.String(), err
}

// osFileStatter implements fileStatter using os.Stat.
type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}
