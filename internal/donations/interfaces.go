package donations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

// Repository defines persistence operations for donation intake and its
// read projections.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	ProjectExists(ctx context.Context, projectID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*UserDonationList, error)
	ListCompletedByProject(ctx context.Context, projectID uuid.UUID, params pagination.Params) (*ProjectDonationList, error)
}
