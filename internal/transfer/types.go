package transfer

import (
	"time"
)

// SourceKind tags where a transfer's bytes come from.
type SourceKind string

const (
	SourceTelegram SourceKind = "telegram"
	SourceURL      SourceKind = "url"
)

// TelegramFileRef identifies a file the user sent to the chat.
type TelegramFileRef struct {
	FileID       string
	DeclaredSize int64
	DeclaredName string
	MediaKind    string
}

// RemoteURL identifies a remote download, optionally pinned to an extraction
// format or reduced to its audio track.
type RemoteURL struct {
	URL          string
	FormatHint   string
	ExtractAudio bool
}

// Request immutably describes one user-visible operation. Exactly one of
// Telegram or Remote is set.
type Request struct {
	OwnerID      int64
	Telegram     *TelegramFileRef
	Remote       *RemoteURL
	MaxSizeBytes int64
	// Token is the user's linked GoFile credential; empty means anonymous.
	Token string
}

func (r *Request) SourceKind() SourceKind {
	if r.Telegram != nil {
		return SourceTelegram
	}
	return SourceURL
}

// Phase is one state of the orchestrator's state machine. Transitions are
// monotonic; Succeeded, Failed and Cancelled are terminal.
type Phase int

const (
	PhaseQueued Phase = iota
	PhaseFetching
	PhaseValidating
	PhaseUploading
	PhasePersisting
	PhaseCleaning
	PhaseSucceeded
	PhaseFailed
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseQueued:
		return "queued"
	case PhaseFetching:
		return "fetching"
	case PhaseValidating:
		return "validating"
	case PhaseUploading:
		return "uploading"
	case PhasePersisting:
		return "persisting"
	case PhaseCleaning:
		return "cleaning"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed || p == PhaseCancelled
}

// State is the mutable progress record owned exclusively by the orchestrator
// for the operation's lifetime.
type State struct {
	Phase        Phase
	BytesDone    int64
	BytesTotal   int64
	StartedAt    time.Time
	LastReportAt time.Time
	// LocalPath names the fetched file; once set it is deleted exactly once,
	// on whichever exit path the operation takes.
	LocalPath string
	Err       error
}

// Result is the terminal value of one operation.
type Result struct {
	OK bool

	RemoteID         string
	DownloadURL      string
	DirectLink       string
	BytesTransferred int64

	// Err carries the failure chain (sentinel category wrapped with detail);
	// Message is the user-facing rendering of it.
	Err     error
	Message string
}
