package database

import (
	"context"

	tgfconfig "github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
)

// UserStore manages users and their linked GoFile credentials.
type UserStore interface {
	EnsureUser(ctx context.Context, chatID int64, userName string) error
	GetUser(ctx context.Context, chatID int64) (User, error)
	SetGoFileToken(ctx context.Context, chatID int64, token string) error
	GetGoFileToken(ctx context.Context, chatID int64) (string, error)
	IsBanned(ctx context.Context, chatID int64) (bool, error)
}

// TransferStore records completed transfers and answers stats queries.
type TransferStore interface {
	RecordTransfer(ctx context.Context, ownerID int64, name string, size int64, remoteID, remoteURL string, sourceKind string) error
	GetUserStats(ctx context.Context, chatID int64) (UserStats, error)
	GetGlobalStats(ctx context.Context) (GlobalStats, error)
}

// Database is the full storage interface.
type Database interface {
	Init(config *tgfconfig.Config) error
	UserStore
	TransferStore
}

func NewDatabase(config *tgfconfig.Config) (Database, error) {
	database := NewSQLiteDatabase()
	if err := database.Init(config); err != nil {
		logutils.Log.WithError(err).Error("Failed to initialize the database")
		return nil, err
	}

	logutils.Log.Info("Database initialized successfully")
	return database, nil
}
