package ffmpeg

import "errors"

// ErrNotFound indicates a required engine binary could not be located.
var ErrNotFound = errors.New("engine binary not found")

// Probe failure classification. Callers treat any of these as "duration
// unknown" and keep going; the distinction matters only for diagnostics.
var (
	// ErrProbeToolMissing indicates the ffprobe binary vanished after resolution.
	ErrProbeToolMissing = errors.New("ffprobe not available")

	// ErrProbeTimeout indicates the metadata query exceeded its deadline.
	ErrProbeTimeout = errors.New("duration probe timed out")

	// ErrProbeInvalidOutput indicates ffprobe produced unparseable output.
	ErrProbeInvalidOutput = errors.New("unparseable duration output")

	// ErrProbeFailed indicates ffprobe exited non-zero.
	ErrProbeFailed = errors.New("duration probe failed")
)
