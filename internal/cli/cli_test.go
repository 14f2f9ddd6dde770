package cli_test

// Notes:
// - Commands are exercised end to end through cobra with every collaborator
//   mocked, so these tests cover validation order, flag-to-config mapping,
//   and output root resolution without touching ffmpeg.
// - Config persistence tests redirect XDG_CONFIG_HOME and must not run in
//   parallel with each other.

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-condense/internal/batch"
	"github.com/alnah/go-condense/internal/cli"
	"github.com/alnah/go-condense/internal/config"
	"github.com/alnah/go-condense/internal/run"
)

// mockResolver returns fixed engine paths.
type mockResolver struct {
	ffmpegErr error
}

func (m *mockResolver) ResolveFFmpeg() (string, error) {
	if m.ffmpegErr != nil {
		return "", m.ffmpegErr
	}
	return "/usr/bin/ffmpeg", nil
}
func (m *mockResolver) ResolveFFprobe() (string, error)           { return "/usr/bin/ffprobe", nil }
func (m *mockResolver) CheckVersion(context.Context, string) bool { return true }

// mockSettings serves a fixed environment.
type mockSettings struct {
	env    config.Env
	stored string
}

func (m *mockSettings) Environment(context.Context) (config.Env, error) { return m.env, nil }
func (m *mockSettings) StoredOutputDir() (string, error)                { return m.stored, nil }

// mockRunner records the pipeline invocation.
type mockRunner struct {
	calls  int
	cfg    config.Config
	layout batch.Layout
	files  []batch.MediaFile
	deps   cli.RunDeps
}

func (m *mockRunner) Run(_ context.Context, cfg config.Config, layout batch.Layout,
	files []batch.MediaFile, deps cli.RunDeps) (run.Stats, []run.FileResult, error) {
	m.calls++
	m.cfg = cfg
	m.layout = layout
	m.files = files
	m.deps = deps
	return run.Stats{}, nil, nil
}

func testEnv(runner *mockRunner, stdin io.Reader) *cli.Env {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	return cli.NewEnv(
		cli.WithStdout(&bytes.Buffer{}),
		cli.WithStderr(&bytes.Buffer{}),
		cli.WithStdin(stdin),
		cli.WithGetenv(func(string) string { return "" }),
		cli.WithResolver(&mockResolver{}),
		cli.WithSettings(&mockSettings{}),
		cli.WithRunner(runner),
	)
}

// writeMedia creates an empty media file and returns its path.
func writeMedia(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestFileCmd - validation
// ---------------------------------------------------------------------------

func TestFileCmd_MissingInput(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	cmd := cli.FileCmd(testEnv(runner, nil))
	cmd.SetArgs([]string{"/no/such/file.mp3"})

	err := cmd.Execute()
	if !errors.Is(err, cli.ErrFileNotFound) {
		t.Errorf("Execute() error = %v, want ErrFileNotFound", err)
	}
	if runner.calls != 0 {
		t.Error("pipeline ran despite missing input")
	}
}

func TestFileCmd_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := writeMedia(t, t.TempDir(), "notes.txt")
	cmd := cli.FileCmd(testEnv(&mockRunner{}, nil))
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); !errors.Is(err, cli.ErrUnsupportedFormat) {
		t.Errorf("Execute() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFileCmd_InvalidConfig(t *testing.T) {
	t.Parallel()

	path := writeMedia(t, t.TempDir(), "ep.mp3")
	cmd := cli.FileCmd(testEnv(&mockRunner{}, nil))
	cmd.SetArgs([]string{path, "--tempo", "0"})

	if err := cmd.Execute(); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("Execute() error = %v, want ErrInvalid", err)
	}
}

func TestFileCmd_FlagsReachConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeMedia(t, dir, "ep.mp3")
	outDir := filepath.Join(dir, "out")

	runner := &mockRunner{}
	cmd := cli.FileCmd(testEnv(runner, nil))
	cmd.SetArgs([]string{path,
		"-o", outDir,
		"--tempo", "1.5",
		"--format", "opus",
		"--normalize",
		"--segment-length", "10m",
		"--min-silence", "750ms",
		"--transcribe", "api",
		"--language", "PT-br",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("pipeline ran %d times, want 1", runner.calls)
	}

	cfg := runner.cfg
	if cfg.TempoRate != 1.5 || cfg.OutputFormat != "opus" || !cfg.Normalize {
		t.Errorf("config = %+v, flags not applied", cfg)
	}
	if cfg.SegmentLength != 10*time.Minute || cfg.MinSilence != 750*time.Millisecond {
		t.Errorf("durations = %v/%v, want 10m/750ms", cfg.SegmentLength, cfg.MinSilence)
	}
	if cfg.Language != "pt-br" {
		t.Errorf("language = %q, want normalized pt-br", cfg.Language)
	}
	if runner.layout.OutputRoot != outDir {
		t.Errorf("output root = %q, want %q", runner.layout.OutputRoot, outDir)
	}
	if len(runner.files) != 1 || runner.files[0].Base != "ep" || runner.files[0].RelDir != "." {
		t.Errorf("files = %+v, want singleton ep", runner.files)
	}
}

func TestFileCmd_DefaultOutputRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeMedia(t, dir, "ep.mp3")

	runner := &mockRunner{}
	cmd := cli.FileCmd(testEnv(runner, nil))
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if want := filepath.Join(dir, "condensed"); runner.layout.OutputRoot != want {
		t.Errorf("output root = %q, want %q", runner.layout.OutputRoot, want)
	}
}

func TestFileCmd_StoredOutputDirWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeMedia(t, dir, "ep.mp3")

	runner := &mockRunner{}
	env := testEnv(runner, nil)
	cli.WithSettings(&mockSettings{stored: "/srv/condensed"})(env)

	cmd := cli.FileCmd(env)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if runner.layout.OutputRoot != "/srv/condensed" {
		t.Errorf("output root = %q, want stored setting", runner.layout.OutputRoot)
	}
}

func TestFileCmd_EngineMissingAborts(t *testing.T) {
	t.Parallel()

	path := writeMedia(t, t.TempDir(), "ep.mp3")
	wantErr := errors.New("ffmpeg not found")

	runner := &mockRunner{}
	env := testEnv(runner, nil)
	cli.WithResolver(&mockResolver{ffmpegErr: wantErr})(env)

	cmd := cli.FileCmd(env)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); !errors.Is(err, wantErr) {
		t.Errorf("Execute() error = %v, want resolver failure", err)
	}
	if runner.calls != 0 {
		t.Error("pipeline ran without an engine")
	}
}

// ---------------------------------------------------------------------------
// TestBatchCmd
// ---------------------------------------------------------------------------

func TestBatchCmd_MissingRoot(t *testing.T) {
	t.Parallel()

	cmd := cli.BatchCmd(testEnv(&mockRunner{}, nil))
	cmd.SetArgs([]string{"/no/such/dir"})

	if err := cmd.Execute(); !errors.Is(err, batch.ErrRootMissing) {
		t.Errorf("Execute() error = %v, want ErrRootMissing", err)
	}
}

func TestBatchCmd_FileInsteadOfDir(t *testing.T) {
	t.Parallel()

	path := writeMedia(t, t.TempDir(), "ep.mp3")
	cmd := cli.BatchCmd(testEnv(&mockRunner{}, nil))
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); !errors.Is(err, cli.ErrNotADirectory) {
		t.Errorf("Execute() error = %v, want ErrNotADirectory", err)
	}
}

func TestBatchCmd_EmptyTree(t *testing.T) {
	t.Parallel()

	cmd := cli.BatchCmd(testEnv(&mockRunner{}, nil))
	cmd.SetArgs([]string{t.TempDir()})

	if err := cmd.Execute(); !errors.Is(err, batch.ErrNoFiles) {
		t.Errorf("Execute() error = %v, want ErrNoFiles", err)
	}
}

func TestBatchCmd_RecursiveDiscovery(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeMedia(t, dir, "a.mp3")
	sub := filepath.Join(dir, "Sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeMedia(t, sub, "b.mkv")

	runner := &mockRunner{}
	cmd := cli.BatchCmd(testEnv(runner, nil))
	cmd.SetArgs([]string{dir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(runner.files) != 2 {
		t.Fatalf("discovered %d files, want 2", len(runner.files))
	}
	if runner.files[1].RelDir != "Sub" {
		t.Errorf("RelDir = %q, want mirrored Sub", runner.files[1].RelDir)
	}
}

// ---------------------------------------------------------------------------
// TestHereCmd - confirmation gate
// ---------------------------------------------------------------------------

func TestHereCmd_DeclinedConfirmationAborts(t *testing.T) {
	dir := t.TempDir()
	writeMedia(t, dir, "ep.mp3")
	t.Chdir(dir)

	runner := &mockRunner{}
	// Prompted options take their defaults; the confirmation gets "n".
	cmd := cli.HereCmd(testEnv(runner, strings.NewReader("\n\n\nn\n")))
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if runner.calls != 0 {
		t.Error("pipeline ran after declined confirmation")
	}
}

func TestHereCmd_YesFlagSkipsPrompt(t *testing.T) {
	dir := t.TempDir()
	writeMedia(t, dir, "ep.mp3")
	t.Chdir(dir)

	runner := &mockRunner{}
	cmd := cli.HereCmd(testEnv(runner, strings.NewReader("")))
	cmd.SetArgs([]string{"--yes", "--tempo", "1.5", "--format", "mp3", "--transcribe", "none"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("pipeline ran %d times, want 1", runner.calls)
	}
	if len(runner.files) != 1 {
		t.Errorf("discovered %d files, want 1", len(runner.files))
	}
}

// ---------------------------------------------------------------------------
// TestConfigCmd - persistence round trip
// ---------------------------------------------------------------------------

func TestConfigCmd_SetAndGet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	target := t.TempDir()

	env := testEnv(&mockRunner{}, nil)
	set := cli.ConfigCmd(env)
	set.SetArgs([]string{"set", "output-dir", target})
	if err := set.Execute(); err != nil {
		t.Fatalf("config set error = %v", err)
	}

	var out bytes.Buffer
	env2 := testEnv(&mockRunner{}, nil)
	cli.WithStdout(&out)(env2)

	get := cli.ConfigCmd(env2)
	get.SetArgs([]string{"get", "output-dir"})
	if err := get.Execute(); err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if strings.TrimSpace(out.String()) != target {
		t.Errorf("config get = %q, want %q", out.String(), target)
	}
}

func TestConfigCmd_UnknownKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := cli.ConfigCmd(testEnv(&mockRunner{}, nil))
	cmd.SetArgs([]string{"set", "bogus", "value"})
	if err := cmd.Execute(); err == nil {
		t.Error("config set accepted an unknown key")
	}
}
