package transfer

import (
	"context"
	"testing"
	"time"
)

func TestRegistryBeginAndRelease(t *testing.T) {
	registry := NewRegistry()

	opCtx, release := registry.Begin(context.Background(), 42)
	if !registry.Active(42) {
		t.Fatal("owner should be active after Begin")
	}
	if registry.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", registry.Count())
	}

	release()
	if registry.Active(42) {
		t.Error("owner should not be active after release")
	}
	select {
	case <-opCtx.Done():
	default:
		t.Error("release must cancel the operation context")
	}
}

func TestRegistrySecondBeginCancelsFirst(t *testing.T) {
	registry := NewRegistry()

	firstCtx, firstRelease := registry.Begin(context.Background(), 42)
	secondCtx, secondRelease := registry.Begin(context.Background(), 42)
	defer secondRelease()

	select {
	case <-firstCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("first operation was not cancelled by the second Begin")
	}
	if secondCtx.Err() != nil {
		t.Error("second operation must not be cancelled")
	}
	if registry.Count() != 1 {
		t.Errorf("Count() = %d, want 1", registry.Count())
	}

	// The first operation's late release must not evict the second entry.
	firstRelease()
	if !registry.Active(42) {
		t.Error("stale release removed the live operation")
	}
}

func TestRegistryCancel(t *testing.T) {
	registry := NewRegistry()

	if registry.Cancel(42) {
		t.Error("Cancel on an idle owner should report false")
	}

	opCtx, release := registry.Begin(context.Background(), 42)
	defer release()

	if !registry.Cancel(42) {
		t.Fatal("Cancel on an active owner should report true")
	}
	select {
	case <-opCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("Cancel did not cancel the operation context")
	}
}

func TestRegistryCancelAll(t *testing.T) {
	registry := NewRegistry()

	ctxA, releaseA := registry.Begin(context.Background(), 1)
	ctxB, releaseB := registry.Begin(context.Background(), 2)
	defer releaseA()
	defer releaseB()

	registry.CancelAll()

	for _, opCtx := range []context.Context{ctxA, ctxB} {
		select {
		case <-opCtx.Done():
		case <-time.After(time.Second):
			t.Fatal("CancelAll left an operation running")
		}
	}
}

func TestRegistryOwnersIsolated(t *testing.T) {
	registry := NewRegistry()

	ctxA, releaseA := registry.Begin(context.Background(), 1)
	defer releaseA()
	_, releaseB := registry.Begin(context.Background(), 2)
	defer releaseB()

	if registry.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", registry.Count())
	}

	registry.Cancel(2)
	if ctxA.Err() != nil {
		t.Error("cancelling one owner must not affect another")
	}
}
