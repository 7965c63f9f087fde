package transcript

import (
	"fmt"
	"math"
	"strings"
)

// SRT renders SubRip blocks. Segments with blank text are skipped and do not
// consume an index.
func (d Document) SRT() string {
	var b strings.Builder
	index := 0

	for _, seg := range d.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		index++
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", index, SRTTimestamp(seg.Start), SRTTimestamp(seg.End), text)
	}

	return b.String()
}

// SRTTimestamp formats seconds as HH:MM:SS,mmm; milliseconds are rounded half to even.
func SRTTimestamp(seconds float64) string {
	ms := int64(math.RoundToEven(seconds * 1000))
	if ms < 0 {
		ms = 0
	}

	hours := ms / 3_600_000
	ms %= 3_600_000
	minutes := ms / 60_000
	ms %= 60_000
	secs := ms / 1000
	ms %= 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, ms)
}
