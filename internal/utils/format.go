package utils

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

func FormatSpeed(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 {
		return "unknown"
	}
	return humanize.Bytes(uint64(bytesPerSecond)) + "/s"
}

func FormatETA(eta time.Duration) string {
	if eta <= 0 {
		return "unknown"
	}
	eta = eta.Round(time.Second)
	if eta >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(eta.Hours()), int(eta.Minutes())%60)
	}
	if eta >= time.Minute {
		return fmt.Sprintf("%dm%02ds", int(eta.Minutes()), int(eta.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(eta.Seconds()))
}
