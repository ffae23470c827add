package projects

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a projects repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Creator").
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Creator").
		Where("slug = ?", slug).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) UpdateStatusFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.ProjectStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListHistory(ctx context.Context, projectID uuid.UUID) ([]models.ProjectStatusHistory, error) {
	var rows []models.ProjectStatusHistory
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("change_date DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) RaisedAmount(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("project_id = ? AND payment_status = ?", projectID, enums.DonationStatusCompleted).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *repository) RaisedAmounts(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(projectIDs))
	if len(projectIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		ProjectID uuid.UUID
		Total     decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Select("project_id, COALESCE(SUM(amount), 0) AS total").
		Where("project_id IN ? AND payment_status = ?", projectIDs, enums.DonationStatusCompleted).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		totals[row.ProjectID] = row.Total
	}
	return totals, nil
}

func (r *repository) ListPublished(ctx context.Context, params pagination.Params, filters ListFilters) (*ProjectList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Preload("Category").
		Where("approval_status = ?", enums.ApprovalStatusPublished)

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.CampaignStatus != nil {
		query = query.Where("campaign_status = ?", *filters.CampaignStatus)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ?", pattern)
	}

	return r.page(ctx, query, params)
}

func (r *repository) ListByCreator(ctx context.Context, creatorID uuid.UUID, params pagination.Params) (*ProjectList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Preload("Category").
		Where("creator_id = ?", creatorID)
	return r.page(ctx, query, params)
}

func (r *repository) page(ctx context.Context, query *gorm.DB, params pagination.Params) (*ProjectList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []models.Project
	err = query.
		Order("created_at DESC").
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
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	totals, err := r.RaisedAmounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]ProjectSummary, 0, len(records))
	for _, record := range records {
		summary := ProjectSummary{
			ID:             record.ID,
			Title:          record.Title,
			Slug:           record.Slug,
			FinancialGoal:  record.FinancialGoal,
			RaisedAmount:   totals[record.ID],
			EndDate:        record.EndDate,
			ApprovalStatus: record.ApprovalStatus,
			CampaignStatus: record.CampaignStatus,
			CreatedAt:      record.CreatedAt,
		}
		if record.Category != nil {
			summary.Category = &CategorySummary{ID: record.Category.ID, Name: record.Category.Name}
		}
		summaries = append(summaries, summary)
	}
	return &ProjectList{Projects: summaries, NextCursor: nextCursor}, nil
}
