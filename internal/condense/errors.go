package condense

import "errors"

// ErrEngineFailed indicates ffmpeg exited non-zero during processing.
// Terminal for the file, non-fatal for the run.
var ErrEngineFailed = errors.New("engine transform failed")

// ErrMissingInput indicates the condensed file to segment does not exist.
var ErrMissingInput = errors.New("segmentation input missing")
