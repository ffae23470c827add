package favorites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

// Repository encapsulates favorite-project persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a favorites repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts a favorite and ignores duplicates.
func (r *Repository) Add(ctx context.Context, userID, projectID uuid.UUID) error {
	if userID == uuid.Nil || projectID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO favorites (user_id, project_id) VALUES (?, ?) ON CONFLICT (user_id, project_id) DO NOTHING`, userID, projectID).
		Error
}

// Remove deletes the favorite if it exists.
func (r *Repository) Remove(ctx context.Context, userID, projectID uuid.UUID) error {
	if userID == uuid.Nil || projectID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Exec(`DELETE FROM favorites WHERE user_id = ? AND project_id = ?`, userID, projectID).
		Error
}

// ProjectExists reports whether the target project exists.
func (r *Repository) ProjectExists(ctx context.Context, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("projects").
		Where("id = ?", projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Exists reports whether the user already favorited the project.
func (r *Repository) Exists(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("favorites").
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type favoriteProjectRecord struct {
	ProjectID       uuid.UUID
	Title           string
	Slug            string
	FinancialGoal   decimal.Decimal
	CampaignStatus  enums.CampaignStatus
	FavoriteCreated time.Time
}

// List returns the user's favorited projects, newest favorite first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*FavoriteList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Table("favorites f").
		Select("f.project_id, p.title, p.slug, p.financial_goal, p.campaign_status, f.created_at AS favorite_created").
		Joins("JOIN projects p ON p.id = f.project_id").
		Where("f.user_id = ?", userID)

	if cursor != nil {
		query = query.Where("(f.created_at < ?) OR (f.created_at = ? AND f.project_id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []favoriteProjectRecord
	err = query.
		Order("f.created_at DESC").
		Order("f.project_id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.FavoriteCreated, ID: last.ProjectID})
	}

	items := make([]FavoriteProject, 0, len(records))
	for _, record := range records {
		items = append(items, FavoriteProject{
			ProjectID:      record.ProjectID,
			Title:          record.Title,
			Slug:           record.Slug,
			FinancialGoal:  record.FinancialGoal,
			CampaignStatus: record.CampaignStatus,
			FavoritedAt:    record.FavoriteCreated,
		})
	}
	return &FavoriteList{Projects: items, NextCursor: nextCursor}, nil
}
