package gatewaywebhook

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

// Repository persists the append-only gateway event log.
type Repository interface {
	CreateEvent(ctx context.Context, event *models.WebhookEvent) (*models.WebhookEvent, error)
	UpdateEventStatus(ctx context.Context, id uuid.UUID, status enums.WebhookEventStatus) error
	ListEvents(ctx context.Context, params pagination.Params, source string) (*EventList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a webhook event repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, event *models.WebhookEvent) (*models.WebhookEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *repository) UpdateEventStatus(ctx context.Context, id uuid.UUID, status enums.WebhookEventStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

func (r *repository) ListEvents(ctx context.Context, params pagination.Params, source string) (*EventList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.WebhookEvent{})
	if source != "" {
		query = query.Where("source = ?", source)
	}
	if cursor != nil {
		query = query.Where("(received_at < ?) OR (received_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []models.WebhookEvent
	err = query.
		Order("received_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.ReceivedAt, ID: last.ID})
	}
	return &EventList{Events: records, NextCursor: nextCursor}, nil
}
