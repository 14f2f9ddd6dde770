package transcribe

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// commandRunner executes the whisper CLI and returns its combined output.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

// fileOps abstracts the filesystem operations used for transcript
// normalization and persistence.
type fileOps interface {
	Stat(name string) (os.FileInfo, error)
	Rename(oldpath, newpath string) error
	WriteFile(name string, data []byte, perm os.FileMode) error
	Glob(pattern string) ([]string, error)
}

// --- Default implementations using real OS functions ---

// Compile-time interface verification.
var (
	_ commandRunner = osCommandRunner{}
	_ fileOps       = osFileOps{}
)

// osCommandRunner implements commandRunner using exec.CommandContext.
type osCommandRunner struct{}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are built by this package, not user input
	cmd := exec.CommandContext(ctx, name, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.Bytes(), err
}

// osFileOps implements fileOps using the os and path/filepath packages.
type osFileOps struct{}

func (osFileOps) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (osFileOps) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (osFileOps) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (osFileOps) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}
