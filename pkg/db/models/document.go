package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file record. Uploads start temporary and are
// subject to cleanup until a project references them and flips IsTemporary.
type Document struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	FileName    string    `gorm:"column:file_name;type:text;not null"`
	ContentType string    `gorm:"column:content_type;type:text;not null"`
	StorageKey  string    `gorm:"column:storage_key;type:text;not null"`
	IsTemporary bool      `gorm:"column:is_temporary;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
