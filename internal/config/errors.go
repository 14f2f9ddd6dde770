package config

import "errors"

// ErrInvalid indicates a malformed configuration value.
// This aborts the run before any file is touched.
var ErrInvalid = errors.New("invalid configuration")
