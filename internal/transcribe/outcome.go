// Package transcribe dispatches original input files to a transcription
// backend and normalizes the result into a text artifact.
package transcribe

import "fmt"

// Kind classifies a transcription outcome.
type Kind int

const (
	// KindSuccess means a transcript was produced.
	KindSuccess Kind = iota

	// KindSoftSkip means the operation was deliberately not attempted or hit
	// an expected operational gap: missing credentials, missing optional
	// tool, remote API error. Counted separately from hard errors.
	KindSoftSkip

	// KindHardError means an unexpected local fault, typically failing to
	// persist an already-obtained transcript.
	KindHardError
)

// String returns the kind's display name.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindSoftSkip:
		return "skipped"
	case KindHardError:
		return "error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the tagged result of one transcription attempt.
// Reason is set for soft skips, Err for hard errors.
type Outcome struct {
	Kind   Kind
	Reason string
	Err    error
}

// Success returns a successful outcome.
func Success() Outcome {
	return Outcome{Kind: KindSuccess}
}

// SoftSkip returns a soft-skip outcome with a human-readable reason.
func SoftSkip(reason string) Outcome {
	return Outcome{Kind: KindSoftSkip, Reason: reason}
}

// HardError returns a hard-error outcome wrapping its cause.
func HardError(err error) Outcome {
	return Outcome{Kind: KindHardError, Err: err}
}
