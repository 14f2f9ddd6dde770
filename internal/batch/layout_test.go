package batch_test

import (
	"path/filepath"
	"testing"

	"github.com/alnah/go-condense/internal/batch"
)

// ---------------------------------------------------------------------------
// TestLayout - mirrored condensed, segment, and transcript paths
// ---------------------------------------------------------------------------

func TestLayout(t *testing.T) {
	t.Parallel()

	l := batch.Layout{OutputRoot: filepath.FromSlash("/out")}

	tests := []struct {
		name           string
		file           batch.MediaFile
		wantOutput     string
		wantSegmentDir string
		wantTranscript string
	}{
		{
			name:           "file directly under root",
			file:           batch.MediaFile{Path: "/in/Ep1.mp3", RelDir: ".", Base: "Ep1"},
			wantOutput:     "/out/Ep1.mp3",
			wantSegmentDir: "/out/segmented",
			wantTranscript: "/out/transcripts/Ep1.txt",
		},
		{
			name:           "file in subdirectory",
			file:           batch.MediaFile{Path: "/in/Sub/Ep1.mp3", RelDir: "Sub", Base: "Ep1"},
			wantOutput:     "/out/Sub/Ep1.mp3",
			wantSegmentDir: "/out/Sub/segmented",
			wantTranscript: "/out/transcripts/Sub/Ep1.txt",
		},
		{
			name:           "deep subdirectory",
			file:           batch.MediaFile{Path: "/in/A/B/x.mkv", RelDir: filepath.Join("A", "B"), Base: "x"},
			wantOutput:     "/out/A/B/x.mp3",
			wantSegmentDir: "/out/A/B/segmented",
			wantTranscript: "/out/transcripts/A/B/x.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := l.OutputPath(tt.file, "mp3"); got != filepath.FromSlash(tt.wantOutput) {
				t.Errorf("OutputPath() = %q, want %q", got, tt.wantOutput)
			}
			if got := l.SegmentDir(tt.file); got != filepath.FromSlash(tt.wantSegmentDir) {
				t.Errorf("SegmentDir() = %q, want %q", got, tt.wantSegmentDir)
			}
			if got := l.TranscriptPath(tt.file); got != filepath.FromSlash(tt.wantTranscript) {
				t.Errorf("TranscriptPath() = %q, want %q", got, tt.wantTranscript)
			}
		})
	}
}

func TestLayout_SegmentPattern(t *testing.T) {
	t.Parallel()

	l := batch.Layout{OutputRoot: filepath.FromSlash("/out")}
	f := batch.MediaFile{Path: "/in/Sub/Ep1.mkv", RelDir: "Sub", Base: "Ep1"}

	want := filepath.FromSlash("/out/Sub/segmented/Ep1_%03d.mp3")
	if got := l.SegmentPattern(f, "mp3"); got != want {
		t.Errorf("SegmentPattern() = %q, want %q", got, want)
	}
}
