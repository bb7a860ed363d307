package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	tgfconfig "github.com/gofile-uploader/telegram-gofile-bot/internal/config"
)

type SQLiteDatabase struct {
	db *gorm.DB
}

func NewSQLiteDatabase() *SQLiteDatabase {
	return &SQLiteDatabase{}
}

func (s *SQLiteDatabase) Init(config *tgfconfig.Config) error {
	db, err := gorm.Open(sqlite.Open(config.DatabasePath()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db

	if err := db.AutoMigrate(&User{}, &FileRecord{}); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) EnsureUser(ctx context.Context, chatID int64, userName string) error {
	var user User
	err := s.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.WithContext(ctx).Create(&User{
			ChatID:   chatID,
			UserName: userName,
		}).Error
	}
	if err != nil {
		return err
	}
	if userName != "" && user.UserName != userName {
		return s.db.WithContext(ctx).Model(&user).Update("user_name", userName).Error
	}
	return nil
}

func (s *SQLiteDatabase) GetUser(ctx context.Context, chatID int64) (User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&user).Error
	return user, err
}

func (s *SQLiteDatabase) SetGoFileToken(ctx context.Context, chatID int64, token string) error {
	return s.db.WithContext(ctx).Model(&User{}).
		Where("chat_id = ?", chatID).
		Update("go_file_token", token).Error
}

func (s *SQLiteDatabase) GetGoFileToken(ctx context.Context, chatID int64) (string, error) {
	user, err := s.GetUser(ctx, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.GoFileToken, nil
}

func (s *SQLiteDatabase) IsBanned(ctx context.Context, chatID int64) (bool, error) {
	user, err := s.GetUser(ctx, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Banned, nil
}

func (s *SQLiteDatabase) RecordTransfer(
	ctx context.Context,
	ownerID int64,
	name string,
	size int64,
	remoteID, remoteURL string,
	sourceKind string,
) error {
	return s.db.WithContext(ctx).Create(&FileRecord{
		OwnerID:    ownerID,
		Name:       name,
		Size:       size,
		RemoteID:   remoteID,
		RemoteURL:  remoteURL,
		SourceKind: sourceKind,
	}).Error
}

func (s *SQLiteDatabase) GetUserStats(ctx context.Context, chatID int64) (UserStats, error) {
	var stats UserStats
	err := s.db.WithContext(ctx).Model(&FileRecord{}).
		Where("owner_id = ?", chatID).
		Select("COUNT(*) AS files, COALESCE(SUM(size), 0) AS total_bytes").
		Scan(&stats).Error
	return stats, err
}

func (s *SQLiteDatabase) GetGlobalStats(ctx context.Context) (GlobalStats, error) {
	var stats GlobalStats
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&stats.Users).Error; err != nil {
		return stats, err
	}
	err := s.db.WithContext(ctx).Model(&FileRecord{}).
		Select("COUNT(*) AS files, COALESCE(SUM(size), 0) AS total_bytes").
		Scan(&stats).Error
	return stats, err
}
