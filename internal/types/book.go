package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book carries library metadata only. The uploaded file itself lives behind
// the object-storage boundary and is referenced by StorageKey.
type Book struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string         `gorm:"not null" json:"title"`
	Author      string         `json:"author"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `gorm:"not null;default:0" json:"size_bytes"`
	StorageKey  string         `json:"storage_key"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Book) TableName() string { return "book" }
