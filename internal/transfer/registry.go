package transfer

import (
	"context"
	"sync"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
)

type operation struct {
	cancel context.CancelFunc
}

// Registry maps each owner to the cancellation handle of their in-flight
// operation and enforces at-most-one active operation per owner. It owns the
// cancellation handles, not the operations themselves.
type Registry struct {
	mu  sync.Mutex
	ops map[int64]*operation
}

func NewRegistry() *Registry {
	return &Registry{
		ops: make(map[int64]*operation),
	}
}

// Begin registers a new operation for the owner, cancelling any prior one
// first. The returned release func must be called on every exit path; it
// removes the entry (only if it is still this operation's) and cancels the
// derived context.
func (r *Registry) Begin(ctx context.Context, ownerID int64) (context.Context, func()) {
	opCtx, cancel := context.WithCancel(ctx)
	op := &operation{cancel: cancel}

	r.mu.Lock()
	if prev, exists := r.ops[ownerID]; exists {
		logutils.Log.WithField("owner_id", ownerID).Info("Cancelling previous operation before starting a new one")
		prev.cancel()
	}
	r.ops[ownerID] = op
	r.mu.Unlock()

	release := func() {
		r.mu.Lock()
		if current, exists := r.ops[ownerID]; exists && current == op {
			delete(r.ops, ownerID)
		}
		r.mu.Unlock()
		cancel()
	}
	return opCtx, release
}

// Cancel requests cancellation of the owner's active operation, if any.
// The entry is removed by the operation's own release, not here.
func (r *Registry) Cancel(ownerID int64) bool {
	r.mu.Lock()
	op, exists := r.ops[ownerID]
	r.mu.Unlock()

	if !exists {
		return false
	}
	logutils.Log.WithField("owner_id", ownerID).Info("Cancelling active operation")
	op.cancel()
	return true
}

func (r *Registry) CancelAll() {
	r.mu.Lock()
	ops := make([]*operation, 0, len(r.ops))
	for _, op := range r.ops {
		ops = append(ops, op)
	}
	r.mu.Unlock()

	for _, op := range ops {
		op.cancel()
	}
}

func (r *Registry) Active(ownerID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.ops[ownerID]
	return exists
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}
