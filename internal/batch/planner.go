// Package batch discovers candidate media files and computes output paths
// that mirror the input directory structure.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// mediaExtensions lists the recognized media extensions (lowercase).
var mediaExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".m4a":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

// Extensions returns the recognized media extensions, sorted, without the
// leading dot. Intended for user-facing messages.
func Extensions() []string {
	exts := make([]string, 0, len(mediaExtensions))
	for ext := range mediaExtensions {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(exts)
	return exts
}

// MediaFile is one discovered input. Immutable once discovered.
type MediaFile struct {
	// Path is the absolute input path.
	Path string
	// RelDir is the file's directory relative to the scan root, "." for
	// files directly under the root. Used for output tree mirroring.
	RelDir string
	// Base is the file name without extension.
	Base string
}

// Options controls a discovery scan.
type Options struct {
	// Recursive scans the whole tree; otherwise only direct children.
	Recursive bool
	// Exclude lists path prefixes to skip, e.g. the output root in
	// self-directory mode so generated output is never reprocessed.
	Exclude []string
}

// Discover scans root for recognized media files.
// Results are ordered by path for deterministic runs.
func Discover(root string, opts Options) ([]MediaFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}
	if info, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootMissing, root)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootMissing, root)
	}

	excluded := make([]string, 0, len(opts.Exclude))
	for _, e := range opts.Exclude {
		if abs, err := filepath.Abs(e); err == nil {
			excluded = append(excluded, abs)
		}
	}

	if opts.Recursive {
		return discoverRecursive(absRoot, excluded)
	}
	return discoverFlat(absRoot, excluded)
}

// discoverFlat scans only the direct children of root.
func discoverFlat(root string, excluded []string) ([]MediaFile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", root, err)
	}

	var files []MediaFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if !IsMediaFile(entry.Name()) || isExcluded(path, excluded) {
			continue
		}
		files = append(files, newMediaFile(path, "."))
	}
	return files, nil
}

// discoverRecursive walks the entire tree under root.
func discoverRecursive(root string, excluded []string) ([]MediaFile, error) {
	var files []MediaFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsMediaFile(d.Name()) || isExcluded(path, excluded) {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		files = append(files, newMediaFile(path, rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return files, nil
}

func newMediaFile(path, relDir string) MediaFile {
	base := filepath.Base(path)
	return MediaFile{
		Path:   path,
		RelDir: relDir,
		Base:   strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// IsMediaFile reports whether name has a recognized media extension.
// The check is case-insensitive.
func IsMediaFile(name string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(name))]
}

// MatchesFilter reports whether the file's base name matches a shell-glob
// pattern. Matching is case-sensitive; an empty pattern matches everything.
// An invalid pattern is a configuration error.
func MatchesFilter(pattern string, f MediaFile) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	ok, err := filepath.Match(pattern, filepath.Base(f.Path))
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	return ok, nil
}

func isExcluded(path string, excluded []string) bool {
	for _, e := range excluded {
		if path == e || strings.HasPrefix(path, e+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
