package database

import (
	"context"
	"testing"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/testutils"
)

func newTestDatabase(t *testing.T) Database {
	t.Helper()
	cfg := testutils.TestConfig(t.TempDir())
	db, err := NewDatabase(cfg)
	if err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}
	return db
}

func TestEnsureUser(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.EnsureUser(ctx, 42, "alice"); err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	// Idempotent.
	if err := db.EnsureUser(ctx, 42, "alice"); err != nil {
		t.Fatalf("second EnsureUser() error = %v", err)
	}

	user, err := db.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.UserName != "alice" {
		t.Errorf("UserName = %q, want alice", user.UserName)
	}

	// Renames propagate.
	if err := db.EnsureUser(ctx, 42, "alice_renamed"); err != nil {
		t.Fatalf("EnsureUser() after rename error = %v", err)
	}
	user, err = db.GetUser(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if user.UserName != "alice_renamed" {
		t.Errorf("UserName = %q, want alice_renamed", user.UserName)
	}
}

func TestGoFileToken(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	// Unknown user reads as anonymous, not as an error.
	token, err := db.GetGoFileToken(ctx, 99)
	if err != nil {
		t.Fatalf("GetGoFileToken() error = %v", err)
	}
	if token != "" {
		t.Errorf("token for unknown user = %q, want empty", token)
	}

	if err := db.EnsureUser(ctx, 42, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetGoFileToken(ctx, 42, "secret-token"); err != nil {
		t.Fatalf("SetGoFileToken() error = %v", err)
	}

	token, err = db.GetGoFileToken(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if token != "secret-token" {
		t.Errorf("token = %q, want secret-token", token)
	}

	// Unlink.
	if err := db.SetGoFileToken(ctx, 42, ""); err != nil {
		t.Fatal(err)
	}
	token, err = db.GetGoFileToken(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		t.Errorf("token after unlink = %q, want empty", token)
	}
}

func TestIsBanned(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	banned, err := db.IsBanned(ctx, 123)
	if err != nil {
		t.Fatalf("IsBanned() for unknown user error = %v", err)
	}
	if banned {
		t.Error("unknown users must not read as banned")
	}

	if err := db.EnsureUser(ctx, 42, "alice"); err != nil {
		t.Fatal(err)
	}
	banned, err = db.IsBanned(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if banned {
		t.Error("fresh users must not be banned")
	}
}

func TestTransferStats(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.EnsureUser(ctx, 42, "alice"); err != nil {
		t.Fatal(err)
	}

	stats, err := db.GetUserStats(ctx, 42)
	if err != nil {
		t.Fatalf("GetUserStats() error = %v", err)
	}
	if stats.Files != 0 || stats.TotalBytes != 0 {
		t.Errorf("fresh stats = %+v, want zeros", stats)
	}

	transfers := []struct {
		name string
		size int64
	}{
		{"a.mp4", 1000},
		{"b.zip", 2500},
	}
	for _, tr := range transfers {
		if err := db.RecordTransfer(ctx, 42, tr.name, tr.size, "code", "https://gofile.io/d/code", "url"); err != nil {
			t.Fatalf("RecordTransfer() error = %v", err)
		}
	}
	if err := db.RecordTransfer(ctx, 77, "other.bin", 500, "code2", "https://gofile.io/d/code2", "telegram"); err != nil {
		t.Fatal(err)
	}

	stats, err = db.GetUserStats(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Files != 2 {
		t.Errorf("Files = %d, want 2", stats.Files)
	}
	if stats.TotalBytes != 3500 {
		t.Errorf("TotalBytes = %d, want 3500", stats.TotalBytes)
	}

	global, err := db.GetGlobalStats(ctx)
	if err != nil {
		t.Fatalf("GetGlobalStats() error = %v", err)
	}
	if global.Files != 3 {
		t.Errorf("global Files = %d, want 3", global.Files)
	}
	if global.TotalBytes != 4000 {
		t.Errorf("global TotalBytes = %d, want 4000", global.TotalBytes)
	}
	if global.Users != 1 {
		t.Errorf("global Users = %d, want 1", global.Users)
	}
}
