package downloader

import (
	"context"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/progress"
)

// Result describes a completed fetch: the local file and what to call it.
type Result struct {
	// Path is the local file inside an ephemeral directory. Ownership of the
	// file passes to the caller; the fetcher never deletes a completed result.
	Path string
	// Name is the sanitized display name for the remote host.
	Name string
	// Size is the final on-disk size in bytes.
	Size int64
	// Title is the media title when the source provided one.
	Title string
}

// Downloader acquires bytes from one external source into local ephemeral
// storage, feeding raw progress samples to the reporter as it goes.
// Implementations honor ctx for cancellation at chunk boundaries and abort
// as soon as the cumulative size exceeds their ceiling.
type Downloader interface {
	Fetch(ctx context.Context, reporter *progress.Reporter) (*Result, error)
}
