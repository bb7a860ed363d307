// Package transfer drives one user-visible operation end to end:
// fetch -> guard -> upload -> persist -> cleanup, with per-user cancellation
// and guaranteed removal of the local temporary file on every exit path.
package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/progress"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/uploader"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/validation"
)

// Uploader pushes a local file to the remote host. Implemented by the GoFile
// client; mocked in tests.
type Uploader interface {
	Upload(ctx context.Context, localPath, displayName, token string, reporter *progress.Reporter) (*uploader.Result, error)
}

// Store records completed transfers. Persistence failure is non-fatal for the
// operation (the user already has a working remote link).
type Store interface {
	RecordTransfer(ctx context.Context, ownerID int64, name string, size int64, remoteID, remoteURL string, sourceKind string) error
}

// Cleaner removes a local ephemeral file; implemented by the janitor's
// guarded delete.
type Cleaner interface {
	Delete(path string)
}

// FetcherFactory builds the fetcher for a request. Injected so the wiring
// (and tests) decide how sources map to fetchers.
type FetcherFactory func(req *Request) downloader.Downloader

type Orchestrator struct {
	cfg        *config.Config
	registry   *Registry
	store      Store
	uploader   Uploader
	cleaner    Cleaner
	newFetcher FetcherFactory
}

func NewOrchestrator(
	cfg *config.Config,
	registry *Registry,
	store Store,
	up Uploader,
	cleaner Cleaner,
	newFetcher FetcherFactory,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		registry:   registry,
		store:      store,
		uploader:   up,
		cleaner:    cleaner,
		newFetcher: newFetcher,
	}
}

func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Run executes the state machine for one request and returns exactly one
// terminal result. The registry entry is released and the local file deleted
// on every exit path.
func (o *Orchestrator) Run(ctx context.Context, req *Request, sink progress.Sink) *Result {
	opCtx, release := o.registry.Begin(ctx, req.OwnerID)
	defer release()

	state := &State{
		Phase:     PhaseQueued,
		StartedAt: time.Now(),
	}
	defer o.cleanupLocalFile(state)

	interval := o.cfg.DownloadSettings.ProgressUpdateInterval

	// Fetching
	state.Phase = PhaseFetching
	fetched, err := o.newFetcher(req).Fetch(opCtx, progress.NewReporter(sink, "Downloading", interval))
	if err != nil {
		return o.terminal(state, req, err)
	}
	state.LocalPath = fetched.Path
	state.BytesTotal = fetched.Size

	if ctxErr := opCtx.Err(); ctxErr != nil {
		return o.terminal(state, req, utils.WrapError(utils.ErrCancelled, "cancelled after fetch", nil))
	}

	// Validating
	state.Phase = PhaseValidating
	displayName := validation.SanitizeFilename(fetched.Name)
	ceiling := req.MaxSizeBytes
	if ceiling <= 0 {
		ceiling = o.cfg.UploadSettings.MaxUploadSize
	}
	if err := validation.CheckSize(fetched.Size, ceiling); err != nil {
		return o.terminal(state, req, err)
	}

	if ctxErr := opCtx.Err(); ctxErr != nil {
		return o.terminal(state, req, utils.WrapError(utils.ErrCancelled, "cancelled before upload", nil))
	}

	// Uploading
	state.Phase = PhaseUploading
	uploaded, err := o.uploader.Upload(opCtx, state.LocalPath, displayName, req.Token,
		progress.NewReporter(sink, "Uploading to GoFile", interval))
	if err != nil {
		return o.terminal(state, req, err)
	}
	state.BytesDone = fetched.Size

	// Persisting: failure is logged, never fatal.
	state.Phase = PhasePersisting
	if o.store != nil {
		persistErr := o.store.RecordTransfer(context.WithoutCancel(opCtx), req.OwnerID,
			displayName, fetched.Size, uploaded.RemoteID, uploaded.DownloadPage, string(req.SourceKind()))
		if persistErr != nil {
			logutils.Log.WithError(persistErr).WithFields(map[string]any{
				"owner_id":  req.OwnerID,
				"remote_id": uploaded.RemoteID,
			}).Error("Failed to record transfer (upload already succeeded)")
		}
	}

	// Cleaning: failure does not flip the outcome.
	state.Phase = PhaseCleaning
	o.cleanupLocalFile(state)

	state.Phase = PhaseSucceeded
	logutils.Log.WithFields(map[string]any{
		"owner_id":  req.OwnerID,
		"name":      displayName,
		"size":      fetched.Size,
		"remote_id": uploaded.RemoteID,
		"duration":  time.Since(state.StartedAt),
	}).Info("Transfer completed")

	return &Result{
		OK:               true,
		RemoteID:         uploaded.RemoteID,
		DownloadURL:      uploaded.DownloadPage,
		DirectLink:       uploaded.DirectLink,
		BytesTransferred: fetched.Size,
	}
}

// Cancel requests cancellation of the owner's in-flight operation.
func (o *Orchestrator) Cancel(ownerID int64) bool {
	return o.registry.Cancel(ownerID)
}

func (o *Orchestrator) terminal(state *State, req *Request, err error) *Result {
	o.cleanupLocalFile(state)
	state.Err = err
	failedDuring := state.Phase

	if errors.Is(err, utils.ErrCancelled) {
		state.Phase = PhaseCancelled
		logutils.Log.WithField("owner_id", req.OwnerID).Info("Transfer cancelled")
	} else {
		state.Phase = PhaseFailed
		logutils.Log.WithError(err).WithFields(map[string]any{
			"owner_id": req.OwnerID,
			"phase":    failedDuring.String(),
		}).Error("Transfer failed")
	}

	return &Result{
		OK:      false,
		Err:     err,
		Message: utils.TransferErrorMessage(err),
	}
}

// cleanupLocalFile deletes the fetched file at most once.
func (o *Orchestrator) cleanupLocalFile(state *State) {
	if state.LocalPath == "" {
		return
	}
	o.cleaner.Delete(state.LocalPath)
	state.LocalPath = ""
}
