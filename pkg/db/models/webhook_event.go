package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/impulsa-app/impulsa-backend/pkg/enums"
)

// WebhookEvent is the append-only audit log of inbound gateway events. Every
// delivery is recorded before any processing, so the raw payload survives
// replays and processing failures.
type WebhookEvent struct {
	ID         uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Source     string                   `gorm:"column:source;type:text;not null"`
	EventType  string                   `gorm:"column:event_type;type:text;not null"`
	Payload    json.RawMessage          `gorm:"column:payload;type:jsonb;not null"`
	Status     enums.WebhookEventStatus `gorm:"column:status;type:text;not null;default:'received'"`
	ReceivedAt time.Time                `gorm:"column:received_at;autoCreateTime"`
}
