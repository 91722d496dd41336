// Package display formats sizes and counts for logs, the progress view and
// the report.
package display

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Sizes use binary multiples with the decimal unit names the report has
// always shown, so "1.00 MB" is 1 MiB everywhere.
const unit = 1024

var units = []string{"KB", "MB", "GB", "TB"}

var counts = message.NewPrinter(language.English)

// HumanizeBytes renders size in the largest unit that keeps it at or above
// one, with two decimals: "512 B", "1.50 MB". Negative sizes are "0 B".
func HumanizeBytes(size int64) string {
	if size < unit {
		return fmt.Sprintf("%d B", max(size, 0))
	}
	v := float64(size) / unit
	i := 0
	for v >= unit && i < len(units)-1 {
		v /= unit
		i++
	}
	return fmt.Sprintf("%.2f %s", v, units[i])
}

// MB renders a size in mebibytes with two decimals, the unit the report
// uses for every folder and total ("12.34 MB").
func MB(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(unit*unit))
}

// FormatNumber groups the digits of a count: 1234567 is "1,234,567".
func FormatNumber(n int64) string {
	return counts.Sprintf("%d", n)
}
