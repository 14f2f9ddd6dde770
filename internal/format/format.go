package format

import (
	"fmt"
	"time"
)

// Clock formats a duration as HH:MM:SS.
// The value is rounded to the nearest whole second before decomposition,
// so 59.6s renders as 00:01:00 rather than 00:00:59.
// Negative durations are clamped to zero.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Seconds formats a duration given in fractional seconds as HH:MM:SS.
// Convenience wrapper for values coming straight from ffprobe output.
func Seconds(secs float64) string {
	return Clock(time.Duration(secs * float64(time.Second)))
}

// Percent formats a ratio as a percentage with two decimals, e.g. "50.00%".
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}
