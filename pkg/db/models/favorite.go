package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite joins a user to a project they bookmarked.
type Favorite struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
