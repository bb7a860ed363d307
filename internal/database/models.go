package database

import "time"

type User struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	ChatID      int64     `json:"chat_id"      gorm:"uniqueIndex;not null"`
	UserName    string    `json:"user_name"    gorm:""`
	GoFileToken string    `json:"gofile_token" gorm:""`
	Banned      bool      `json:"banned"       gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"   gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at"   gorm:"autoUpdateTime"`
}

type FileRecord struct {
	ID         uint      `json:"id"          gorm:"primaryKey"`
	OwnerID    int64     `json:"owner_id"    gorm:"index;not null"`
	Name       string    `json:"name"        gorm:"not null"`
	Size       int64     `json:"size"        gorm:"not null;default:0"`
	RemoteID   string    `json:"remote_id"   gorm:"not null"`
	RemoteURL  string    `json:"remote_url"  gorm:""`
	SourceKind string    `json:"source_kind" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"  gorm:"autoCreateTime"`
}

// UserStats summarizes one user's completed transfers.
type UserStats struct {
	Files      int64
	TotalBytes int64
}

// GlobalStats summarizes the whole deployment.
type GlobalStats struct {
	Users      int64
	Files      int64
	TotalBytes int64
}
