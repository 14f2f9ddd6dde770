package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates an input file has an unrecognized
	// media extension.
	ErrUnsupportedFormat = errors.New("unsupported media format")

	// ErrNotADirectory indicates the batch root is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrLogFile indicates the log file could not be opened.
	ErrLogFile = errors.New("cannot open log file")
)
