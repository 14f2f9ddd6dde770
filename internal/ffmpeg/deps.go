package ffmpeg

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// ---------------------------------------------------------------------------
// Interfaces - local to this package, following Go idiom
// ---------------------------------------------------------------------------

// commandRunner executes an external command and returns stdout and stderr
// separately. ffprobe writes its answer to stdout; ffmpeg writes everything
// of interest to stderr.
type commandRunner interface {
	Run(ctx context.Context, name string, args []string) (stdout, stderr string, err error)
}

// envProvider abstracts environment and PATH lookup operations.
type envProvider interface {
	Getenv(key string) string
	LookPath(file string) (string, error)
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to standard library
// ---------------------------------------------------------------------------

// Compile-time interface verification.
var (
	_ commandRunner = osCommandRunner{}
	_ envProvider   = osEnvProvider{}
)

// osCommandRunner implements commandRunner using exec.CommandContext.
type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, name string, args []string) (string, string, error) {
	// #nosec G204 -- name and args are built by this package, not user input
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// osEnvProvider implements envProvider using os and exec packages.
type osEnvProvider struct{}

func (osEnvProvider) Getenv(key string) string {
	return os.Getenv(key)
}

func (osEnvProvider) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
