package ui

import (
	"fmt"
	"sync/atomic"
)

type Stats struct {
	TotalPages    atomic.Int64
	TotalBytes    atomic.Int64
	TotalChapters atomic.Int64
}

// HumanBytes renders a byte count for progress bars and run summaries.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
