package util

import "github.com/dustin/go-humanize"

// FormatBytes formats a byte count using binary (IEC) units,
// e.g. 1024 -> "1.0 KiB", 1023 -> "1023 B".
func FormatBytes(n uint64) string {
	return humanize.IBytes(n)
}
