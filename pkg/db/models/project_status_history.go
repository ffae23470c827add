package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatusHistory is the append-only audit trail of status transitions.
// Rows are never updated or deleted; one row is written per transition, inside
// the same transaction that performs it.
type ProjectStatusHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID  uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	OldStatus  string    `gorm:"column:old_status;type:text;not null"`
	NewStatus  string    `gorm:"column:new_status;type:text;not null"`
	ChangedBy  uuid.UUID `gorm:"column:changed_by;type:uuid;not null"`
	Reason     *string   `gorm:"column:reason"`
	ChangeDate time.Time `gorm:"column:change_date;autoCreateTime"`
}

// TableName keeps the plural-noun convention explicit.
func (ProjectStatusHistory) TableName() string {
	return "project_status_history"
}
