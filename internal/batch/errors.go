package batch

import "errors"

// ErrRootMissing indicates the scan root doesn't exist or isn't a directory.
var ErrRootMissing = errors.New("scan root not found")

// ErrBadPattern indicates the name filter is not a valid shell glob.
var ErrBadPattern = errors.New("invalid filter pattern")

// ErrNoFiles indicates discovery found nothing to process.
var ErrNoFiles = errors.New("no media files found")
