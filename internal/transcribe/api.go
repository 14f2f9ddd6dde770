package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-condense/internal/config"
	"github.com/alnah/go-condense/internal/lang"
)

// audioTranscriber is the slice of the OpenAI client this package needs.
// *openai.Client implements it implicitly; tests inject mocks.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

var _ audioTranscriber = (*openai.Client)(nil)

// APITranscriber sends the original file to OpenAI's transcription endpoint.
// The endpoint always uses the whisper-1 model regardless of the locally
// configured model size.
type APITranscriber struct {
	client   audioTranscriber
	apiKey   string
	language string
	dryRun   bool
	files    fileOps
	log      hclog.Logger
}

// APIOption configures an APITranscriber.
type APIOption func(*APITranscriber)

// WithAPIClient sets the transcription client (for testing).
func WithAPIClient(c audioTranscriber) APIOption {
	return func(t *APITranscriber) { t.client = c }
}

// WithAPIFileOps sets the filesystem implementation (for testing).
func WithAPIFileOps(f fileOps) APIOption {
	return func(t *APITranscriber) { t.files = f }
}

// WithAPILogger sets the logger.
func WithAPILogger(l hclog.Logger) APIOption {
	return func(t *APITranscriber) { t.log = l }
}

// WithAPIDryRun makes Transcribe create a placeholder without calling out.
func WithAPIDryRun(dry bool) APIOption {
	return func(t *APITranscriber) { t.dryRun = dry }
}

// NewAPITranscriber creates an API-backed transcriber.
// An empty apiKey is allowed: every call then soft-skips, since missing
// credentials are an expected operational condition in batch runs.
func NewAPITranscriber(apiKey, language string, opts ...APIOption) *APITranscriber {
	t := &APITranscriber{
		apiKey:   apiKey,
		language: language,
		files:    osFileOps{},
		log:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil && apiKey != "" {
		t.client = openai.NewClient(apiKey)
	}
	return t
}

// Transcribe uploads inputPath and writes the raw text response verbatim to
// {base}.txt in outDir.
func (t *APITranscriber) Transcribe(ctx context.Context, inputPath, outDir string) Outcome {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	target := filepath.Join(outDir, base+".txt")

	if t.dryRun {
		t.log.Info("dry run: would transcribe via API", "input", inputPath, "output", target)
		if err := writeTranscriptPlaceholder(t.files, outDir, target); err != nil {
			return HardError(err)
		}
		return Success()
	}

	if t.apiKey == "" {
		return SoftSkip("no API key set (export OPENAI_API_KEY)")
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: inputPath,
		Format:   openai.AudioResponseFormatText,
		Language: lang.BaseCode(t.language),
	})
	if err != nil {
		// Transport and remote failures are expected operational conditions;
		// they must not abort the batch.
		return SoftSkip(fmt.Sprintf("transcription request failed: %v", err))
	}

	text := resp.Text
	if looksLikeErrorPayload(text) {
		return SoftSkip(fmt.Sprintf("API returned no transcript: %s", snippet(text)))
	}

	if err := config.EnsureDir(outDir); err != nil {
		return HardError(err)
	}
	if err := t.files.WriteFile(target, []byte(text), 0644); err != nil { // #nosec G306 -- text artifact
		// Losing an already-obtained transcript is data loss, distinct from
		// every skip case above.
		return HardError(fmt.Errorf("%w: %s: %v", ErrWriteFailed, target, err))
	}

	t.log.Debug("transcribed via API", "input", inputPath, "output", target)
	return Success()
}

// looksLikeErrorPayload reports whether a response body is empty or looks
// like a JSON error object rather than transcript text.
func looksLikeErrorPayload(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	return strings.HasPrefix(trimmed, "{") || strings.Contains(trimmed, `"error":`)
}

// snippet truncates a payload for log-sized skip reasons.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "empty response"
	}
	const max = 120
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
