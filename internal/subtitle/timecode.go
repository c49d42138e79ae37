package subtitle

import (
	"fmt"
	"math"
)

// absorbs binary float error so 3661.234 truncates to 234ms, not 233ms
const millisEpsilon = 1e-6

// largest input whose millisecond count still fits in an int64
const maxTimestampSeconds = float64(math.MaxInt64/1000 - 1)

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are
// truncated. Hours widen past two digits instead of wrapping; negative input
// clamps to zero and very large input to the largest representable time.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	seconds = min(seconds, maxTimestampSeconds)
	total := int64(math.Floor(seconds*1000 + millisEpsilon))

	hours := total / 3_600_000
	minutes := (total % 3_600_000) / 60_000
	secs := (total % 60_000) / 1000
	millis := total % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
