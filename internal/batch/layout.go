package batch

import (
	"fmt"
	"path/filepath"
)

// Subdirectory names within the output tree.
const (
	// segmentedDirName nests one level under the mirrored output path.
	segmentedDirName = "segmented"
	// transcriptsDirName is a single root at the top of the output tree,
	// not per-file.
	transcriptsDirName = "transcripts"
)

// Layout computes output paths that mirror the input tree:
//
//	<outputRoot>/[<relDir>/]<base>.<format>                condensed file
//	<outputRoot>/[<relDir>/]segmented/<base>_NNN.<format>  segments
//	<outputRoot>/transcripts/[<relDir>/]<base>.txt         transcript
type Layout struct {
	OutputRoot string
}

// OutputPath returns the condensed file's destination.
func (l Layout) OutputPath(f MediaFile, format string) string {
	return filepath.Join(l.mirrorDir(l.OutputRoot, f), f.Base+"."+format)
}

// SegmentDir returns the directory segments of f are written into.
func (l Layout) SegmentDir(f MediaFile) string {
	return filepath.Join(l.mirrorDir(l.OutputRoot, f), segmentedDirName)
}

// SegmentPattern returns the ffmpeg output pattern for f's segments,
// producing <base>_000.<format>, <base>_001.<format>, and so on.
func (l Layout) SegmentPattern(f MediaFile, format string) string {
	return filepath.Join(l.SegmentDir(f), fmt.Sprintf("%s_%%03d.%s", f.Base, format))
}

// TranscriptDir returns the directory f's transcript is written into.
func (l Layout) TranscriptDir(f MediaFile) string {
	return l.mirrorDir(filepath.Join(l.OutputRoot, transcriptsDirName), f)
}

// TranscriptPath returns the transcript's destination.
func (l Layout) TranscriptPath(f MediaFile) string {
	return filepath.Join(l.TranscriptDir(f), f.Base+".txt")
}

// mirrorDir joins a root with the file's relative directory.
// Files directly under the scan root land straight in the root.
func (Layout) mirrorDir(root string, f MediaFile) string {
	if f.RelDir == "" || f.RelDir == "." {
		return root
	}
	return filepath.Join(root, f.RelDir)
}
