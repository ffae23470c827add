package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

// DocumentStore is the external document service contract the lifecycle
// engine consumes. Uploaded proof documents start temporary; marking one
// permanent keeps it out of the upload janitor's reach once a project
// references it.
type DocumentStore interface {
	MarkPermanent(ctx context.Context, documentID uuid.UUID) error
}

// Repository defines persistence operations for projects and their status
// history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	// FindByIDForUpdate locks the project row until the enclosing
	// transaction commits. Callers must run inside WithTx.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error)
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
	UpdateStatusFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListPublished(ctx context.Context, params pagination.Params, filters ListFilters) (*ProjectList, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, params pagination.Params) (*ProjectList, error)
	AppendHistory(ctx context.Context, entry *models.ProjectStatusHistory) error
	ListHistory(ctx context.Context, projectID uuid.UUID) ([]models.ProjectStatusHistory, error)
	RaisedAmount(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error)
	RaisedAmounts(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}
