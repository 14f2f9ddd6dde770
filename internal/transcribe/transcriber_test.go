package transcribe_test

// Notes:
// - The OpenAI client and whisper CLI are mocked through their seams; these
//   tests pin the Success / SoftSkip / HardError classification boundaries,
//   which is the part the orchestrator's counters depend on.
// - Real filesystem operations use t.TempDir; fileOps mocks are used only to
//   force write failures.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-condense/internal/transcribe"
)

// fakeClient implements the OpenAI transcription seam.
type fakeClient struct {
	text string
	err  error

	calls int
	req   openai.AudioRequest
}

func (f *fakeClient) CreateTranscription(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	f.calls++
	f.req = req
	if f.err != nil {
		return openai.AudioResponse{}, f.err
	}
	return openai.AudioResponse{Text: f.text}, nil
}

// fakeWhisper implements the whisper CLI seam, writing the given files into
// the --output_dir argument it receives.
type fakeWhisper struct {
	produces []string // file names created in the output dir
	err      error

	calls   int
	gotArgs []string
}

func (f *fakeWhisper) CombinedOutput(_ context.Context, _ string, args []string) ([]byte, error) {
	f.calls++
	f.gotArgs = args
	if f.err != nil {
		return []byte("whisper: error"), f.err
	}
	outDir := ""
	for i, a := range args {
		if a == "--output_dir" && i+1 < len(args) {
			outDir = args[i+1]
		}
	}
	for _, name := range f.produces {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte("text"), 0o644); err != nil {
			return nil, err
		}
	}
	return []byte("done"), nil
}

// failingWriter wraps real file ops but fails WriteFile.
type failingWriter struct{}

func (failingWriter) Stat(name string) (os.FileInfo, error)       { return os.Stat(name) }
func (failingWriter) Rename(o, n string) error                    { return os.Rename(o, n) }
func (failingWriter) Glob(pattern string) ([]string, error)       { return filepath.Glob(pattern) }
func (failingWriter) WriteFile(string, []byte, os.FileMode) error { return errors.New("disk full") }

// ---------------------------------------------------------------------------
// TestAPITranscriber - outcome classification
// ---------------------------------------------------------------------------

func TestAPITranscriber_NoKeySoftSkips(t *testing.T) {
	t.Parallel()

	client := &fakeClient{text: "hello"}
	tr := transcribe.NewAPITranscriber("", "", transcribe.WithAPIClient(client))

	out := tr.Transcribe(context.Background(), "ep.mp3", t.TempDir())
	if out.Kind != transcribe.KindSoftSkip {
		t.Fatalf("outcome = %v, want soft skip", out.Kind)
	}
	if client.calls != 0 {
		t.Errorf("API called %d times without key, want 0", client.calls)
	}
}

func TestAPITranscriber_TransportFailureSoftSkips(t *testing.T) {
	t.Parallel()

	tr := transcribe.NewAPITranscriber("sk-test", "",
		transcribe.WithAPIClient(&fakeClient{err: errors.New("connection refused")}))

	out := tr.Transcribe(context.Background(), "ep.mp3", t.TempDir())
	if out.Kind != transcribe.KindSoftSkip {
		t.Errorf("outcome = %v, want soft skip", out.Kind)
	}
}

func TestAPITranscriber_ErrorPayloadSoftSkips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{name: "empty body", text: ""},
		{name: "whitespace body", text: "  \n"},
		{name: "JSON object body", text: `{"error": {"message": "bad"}}`},
		{name: "error field mid-body", text: `status: {"error": "quota"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := transcribe.NewAPITranscriber("sk-test", "",
				transcribe.WithAPIClient(&fakeClient{text: tt.text}))

			out := tr.Transcribe(context.Background(), "ep.mp3", t.TempDir())
			if out.Kind != transcribe.KindSoftSkip {
				t.Errorf("outcome = %v (reason %q), want soft skip", out.Kind, out.Reason)
			}
		})
	}
}

func TestAPITranscriber_Success(t *testing.T) {
	t.Parallel()

	client := &fakeClient{text: "This is the transcript."}
	tr := transcribe.NewAPITranscriber("sk-test", "pt-BR", transcribe.WithAPIClient(client))

	outDir := t.TempDir()
	out := tr.Transcribe(context.Background(), "/in/Ep1.mkv", outDir)
	if out.Kind != transcribe.KindSuccess {
		t.Fatalf("outcome = %v (reason %q, err %v), want success", out.Kind, out.Reason, out.Err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "Ep1.txt"))
	if err != nil {
		t.Fatalf("transcript missing: %v", err)
	}
	if string(data) != "This is the transcript." {
		t.Errorf("transcript = %q, want verbatim response text", data)
	}

	// The API only accepts base language codes.
	if client.req.Language != "pt" {
		t.Errorf("request language = %q, want pt", client.req.Language)
	}
	if client.req.Model != openai.Whisper1 {
		t.Errorf("request model = %q, want whisper-1", client.req.Model)
	}
}

func TestAPITranscriber_WriteFailureIsHardError(t *testing.T) {
	t.Parallel()

	tr := transcribe.NewAPITranscriber("sk-test", "",
		transcribe.WithAPIClient(&fakeClient{text: "transcript"}),
		transcribe.WithAPIFileOps(failingWriter{}))

	out := tr.Transcribe(context.Background(), "ep.mp3", t.TempDir())
	if out.Kind != transcribe.KindHardError {
		t.Fatalf("outcome = %v, want hard error", out.Kind)
	}
	if !errors.Is(out.Err, transcribe.ErrWriteFailed) {
		t.Errorf("cause = %v, want ErrWriteFailed", out.Err)
	}
}

// ---------------------------------------------------------------------------
// TestLocalTranscriber - whisper invocation and output normalization
// ---------------------------------------------------------------------------

func TestLocalTranscriber_MissingBinarySoftSkips(t *testing.T) {
	t.Parallel()

	tr := transcribe.NewLocalTranscriber("", "medium", "")
	out := tr.Transcribe(context.Background(), "ep.mp3", t.TempDir())
	if out.Kind != transcribe.KindSoftSkip {
		t.Errorf("outcome = %v, want soft skip", out.Kind)
	}
}

func TestLocalTranscriber_FailedRunSoftSkips(t *testing.T) {
	t.Parallel()

	tr := transcribe.NewLocalTranscriber("/usr/bin/whisper", "medium", "",
		transcribe.WithLocalCommandRunner(&fakeWhisper{err: errors.New("exit status 1")}))

	out := tr.Transcribe(context.Background(), "ep.mp3", t.TempDir())
	if out.Kind != transcribe.KindSoftSkip {
		t.Errorf("outcome = %v, want soft skip", out.Kind)
	}
}

func TestLocalTranscriber_ExpectedOutputName(t *testing.T) {
	t.Parallel()

	whisper := &fakeWhisper{produces: []string{"Ep1.txt"}}
	tr := transcribe.NewLocalTranscriber("/usr/bin/whisper", "small", "en",
		transcribe.WithLocalCommandRunner(whisper))

	outDir := t.TempDir()
	out := tr.Transcribe(context.Background(), "/in/Ep1.mkv", outDir)
	if out.Kind != transcribe.KindSuccess {
		t.Fatalf("outcome = %v (err %v), want success", out.Kind, out.Err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "Ep1.txt")); err != nil {
		t.Errorf("normalized transcript missing: %v", err)
	}

	// Model and language flags reach the CLI.
	joined := ""
	for _, a := range whisper.gotArgs {
		joined += a + " "
	}
	for _, want := range []string{"--model small", "--language en", "--output_format txt"} {
		if !strings.Contains(joined, want) {
			t.Errorf("whisper args %q missing %q", joined, want)
		}
	}
}

func TestLocalTranscriber_NormalizesRenamedOutput(t *testing.T) {
	t.Parallel()

	// Whisper appended a language suffix; the single candidate is renamed.
	tr := transcribe.NewLocalTranscriber("/usr/bin/whisper", "medium", "",
		transcribe.WithLocalCommandRunner(&fakeWhisper{produces: []string{"Ep1.en.txt"}}))

	outDir := t.TempDir()
	out := tr.Transcribe(context.Background(), "/in/Ep1.mkv", outDir)
	if out.Kind != transcribe.KindSuccess {
		t.Fatalf("outcome = %v (err %v), want success", out.Kind, out.Err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "Ep1.txt")); err != nil {
		t.Errorf("normalized transcript missing: %v", err)
	}
}

func TestLocalTranscriber_MissingOutputIsHardError(t *testing.T) {
	t.Parallel()

	tr := transcribe.NewLocalTranscriber("/usr/bin/whisper", "medium", "",
		transcribe.WithLocalCommandRunner(&fakeWhisper{})) // produces nothing

	out := tr.Transcribe(context.Background(), "/in/Ep1.mkv", t.TempDir())
	if out.Kind != transcribe.KindHardError {
		t.Fatalf("outcome = %v, want hard error", out.Kind)
	}
	if !errors.Is(out.Err, transcribe.ErrOutputNotFound) {
		t.Errorf("cause = %v, want ErrOutputNotFound", out.Err)
	}
}

func TestLocalTranscriber_AmbiguousOutputIsHardError(t *testing.T) {
	t.Parallel()

	tr := transcribe.NewLocalTranscriber("/usr/bin/whisper", "medium", "",
		transcribe.WithLocalCommandRunner(&fakeWhisper{
			produces: []string{"Ep1.en.txt", "Ep1.pt.txt"},
		}))

	out := tr.Transcribe(context.Background(), "/in/Ep1.mkv", t.TempDir())
	if out.Kind != transcribe.KindHardError {
		t.Fatalf("outcome = %v, want hard error", out.Kind)
	}
	if !errors.Is(out.Err, transcribe.ErrOutputAmbiguous) {
		t.Errorf("cause = %v, want ErrOutputAmbiguous", out.Err)
	}
}

// ---------------------------------------------------------------------------
// TestDryRun - placeholders without backend invocation
// ---------------------------------------------------------------------------

func TestTranscribers_DryRun(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	whisper := &fakeWhisper{}

	backends := []struct {
		name string
		tr   transcribe.Transcriber
	}{
		{
			name: "api",
			tr: transcribe.NewAPITranscriber("sk-test", "",
				transcribe.WithAPIClient(client), transcribe.WithAPIDryRun(true)),
		},
		{
			name: "local",
			tr: transcribe.NewLocalTranscriber("/usr/bin/whisper", "medium", "",
				transcribe.WithLocalCommandRunner(whisper), transcribe.WithLocalDryRun(true)),
		},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			t.Parallel()

			outDir := t.TempDir()
			out := b.tr.Transcribe(context.Background(), "/in/Ep1.mkv", outDir)
			if out.Kind != transcribe.KindSuccess {
				t.Fatalf("outcome = %v, want success", out.Kind)
			}
			info, err := os.Stat(filepath.Join(outDir, "Ep1.txt"))
			if err != nil {
				t.Fatalf("placeholder missing: %v", err)
			}
			if info.Size() != 0 {
				t.Errorf("placeholder size = %d, want 0", info.Size())
			}
		})
	}

	if client.calls != 0 || whisper.calls != 0 {
		t.Errorf("backends invoked under dry run: api=%d local=%d", client.calls, whisper.calls)
	}
}

// ---------------------------------------------------------------------------
// TestKind_String
// ---------------------------------------------------------------------------

func TestKind_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind transcribe.Kind
		want string
	}{
		{kind: transcribe.KindSuccess, want: "success"},
		{kind: transcribe.KindSoftSkip, want: "skipped"},
		{kind: transcribe.KindHardError, want: "error"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind.String() = %q, want %q", got, tt.want)
		}
	}
}
