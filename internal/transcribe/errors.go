package transcribe

import "errors"

// ErrWriteFailed indicates a transcript was obtained but could not be
// persisted. This is data loss, surfaced as a hard error.
var ErrWriteFailed = errors.New("transcript write failed")

// ErrOutputNotFound indicates whisper exited successfully but its output
// file could not be identified in the output directory.
var ErrOutputNotFound = errors.New("whisper output file not found")

// ErrOutputAmbiguous indicates several candidate whisper output files were
// found and none could be safely chosen.
var ErrOutputAmbiguous = errors.New("ambiguous whisper output files")
