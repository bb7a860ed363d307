// Package progress decouples the high-frequency byte stream of a transfer
// from the low-frequency status-message channel. A Reporter accepts samples
// at any rate and forwards at most one rendered update per interval to its
// sink; intermediate samples are dropped, only the latest is used.
package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
)

const barSegments = 10

// Sample is one raw progress observation. BytesTotal may be zero when the
// total is not yet known; Rate is bytes per second and may be zero.
type Sample struct {
	BytesDone  int64
	BytesTotal int64
	Rate       float64
}

// Sink receives rendered status text. Typically backed by a chat message edit.
type Sink interface {
	Update(text string) error
}

type Reporter struct {
	sink     Sink
	action   string
	interval time.Duration

	mu       sync.Mutex
	lastEmit time.Time
}

// NewReporter creates a reporter that emits to sink at most once per interval.
// action is the human-readable verb shown in status text ("Downloading", ...).
func NewReporter(sink Sink, action string, interval time.Duration) *Reporter {
	return &Reporter{
		sink:     sink,
		action:   action,
		interval: interval,
	}
}

// Report forwards the sample to the sink if the rate limit allows it.
// Sink failures are swallowed: progress reporting must never fail a transfer.
func (r *Reporter) Report(sample Sample) {
	r.mu.Lock()
	now := time.Now()
	if now.Sub(r.lastEmit) < r.interval {
		r.mu.Unlock()
		return
	}
	r.lastEmit = now
	r.mu.Unlock()

	if err := r.sink.Update(FormatStatus(r.action, sample)); err != nil {
		logutils.Log.WithError(err).Debug("Progress sink update failed")
	}
}

// FormatStatus renders one status line: action, percentage, bar,
// transferred/total, speed and ETA. Unknown values render as "unknown".
func FormatStatus(action string, s Sample) string {
	var b strings.Builder

	if s.BytesTotal > 0 {
		percent := Percentage(s.BytesDone, s.BytesTotal)
		fmt.Fprintf(&b, "%s %d%%\n", action, percent)
		fmt.Fprintf(&b, "%s\n", RenderBar(percent))
		fmt.Fprintf(&b, "%s / %s\n", utils.FormatSize(s.BytesDone), utils.FormatSize(s.BytesTotal))
	} else {
		fmt.Fprintf(&b, "%s\n", action)
		fmt.Fprintf(&b, "%s / unknown\n", utils.FormatSize(s.BytesDone))
	}

	fmt.Fprintf(&b, "Speed: %s", utils.FormatSpeed(s.Rate))

	eta := ETA(s)
	fmt.Fprintf(&b, " | ETA: %s", utils.FormatETA(eta))

	return b.String()
}

// Percentage is floor(done/total*100), clamped to [0,100]. Returns 0 when the
// total is unknown.
func Percentage(done, total int64) int {
	if total <= 0 {
		return 0
	}
	percent := int(done * 100 / total)
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// ETA estimates remaining time from the sample's rate, zero when unknown.
func ETA(s Sample) time.Duration {
	if s.Rate <= 0 || s.BytesTotal <= 0 || s.BytesDone >= s.BytesTotal {
		return 0
	}
	return time.Duration(float64(s.BytesTotal-s.BytesDone) / s.Rate * float64(time.Second))
}

// RenderBar draws the fixed-width filled/empty progress bar.
func RenderBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := barSegments * percent / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barSegments-filled)
}
