// Package format provides shared formatting utilities for human-readable output.
package format

import (
	"fmt"
	"strconv"
	"time"
)

// Duration formats a duration with the coarsest unit that keeps it readable:
// µs, ms, then seconds and minutes with one decimal.
func Duration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return strconv.FormatInt(d.Microseconds(), 10) + "µs"
	case d < time.Second:
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	case d < time.Minute:
		return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
	default:
		return strconv.FormatFloat(d.Minutes(), 'f', 1, 64) + "m"
	}
}

// Seconds formats a duration as seconds with two decimals, e.g. "2.50s".
func Seconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

var byteUnits = []string{"KB", "MB", "GB", "TB", "PB", "EB"}

// Bytes formats a size in binary units, e.g. "1.5 KB".
func Bytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	value := float64(n) / 1024
	unit := 0

	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.1f %s", value, byteUnits[unit])
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}

	return string(r[:n-3]) + "..."
}
