package filter

import (
	"fmt"
	"strings"
	"time"
)

// Fixed loudness normalization targets (EBU R128 style, speech-friendly).
const (
	loudnormIntegrated = -16.0 // LUFS
	loudnormTruePeak   = -1.5  // dBTP
	loudnormRange      = 11.0  // LU
)

// afftdnNoiseFloor is the conservative noise floor for the denoise stage.
// Aggressive values smear speech; -25dB only removes steady background hiss.
const afftdnNoiseFloor = -25

// Params holds the inputs the chain builder needs.
// A subset of the run configuration, kept separate so this package stays pure.
type Params struct {
	SilenceThresholdDB float64       // e.g. -30
	MinSilence         time.Duration // minimum silence to remove
	Normalize          bool
	Denoise            bool
}

// Chain is an ordered list of FFmpeg audio filter stages.
type Chain []string

// String renders the chain as an -af argument value.
func (c Chain) String() string {
	return strings.Join(c, ",")
}

// BuildChain composes the audio filter pipeline:
//
//	silenceremove -> atempo... -> loudnorm -> afftdn
//
// The order is fixed: silence removal operates on original timing so it must
// precede tempo change; normalization measures the retimed signal; denoise
// runs last. The tempo stages are omitted entirely for the identity plan.
func BuildChain(p Params, plan []float64) Chain {
	chain := Chain{silenceRemoveStage(p.SilenceThresholdDB, p.MinSilence)}

	if !IsIdentity(plan) {
		for _, step := range plan {
			chain = append(chain, "atempo="+FormatStep(step))
		}
	}

	if p.Normalize {
		chain = append(chain, fmt.Sprintf("loudnorm=I=%g:TP=%g:LRA=%g",
			loudnormIntegrated, loudnormTruePeak, loudnormRange))
	}

	if p.Denoise {
		chain = append(chain, fmt.Sprintf("afftdn=nf=%d", afftdnNoiseFloor))
	}

	return chain
}

// silenceRemoveStage builds the silenceremove stage.
// stop_periods=-1 removes every silent interval in the stream, not just
// leading silence.
func silenceRemoveStage(thresholdDB float64, minSilence time.Duration) string {
	return fmt.Sprintf("silenceremove=stop_periods=-1:stop_duration=%s:stop_threshold=%gdB",
		FormatStep(minSilence.Seconds()), thresholdDB)
}
