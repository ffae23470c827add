package donations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a donations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) ProjectExists(ctx context.Context, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type userDonationRecord struct {
	ID            uuid.UUID
	ProjectID     uuid.UUID
	ProjectTitle  string
	ProjectSlug   string
	Amount        decimal.Decimal
	PaymentMethod enums.PaymentMethod
	PaymentStatus enums.DonationStatus
	IsAnonymous   bool
	DonationDate  time.Time
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*UserDonationList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Table("donations d").
		Select("d.id, d.project_id, p.title AS project_title, p.slug AS project_slug, d.amount, d.payment_method, d.payment_status, d.is_anonymous, d.donation_date").
		Joins("JOIN projects p ON p.id = d.project_id").
		Where("d.user_id = ?", userID)

	if cursor != nil {
		query = query.Where("(d.donation_date < ?) OR (d.donation_date = ? AND d.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []userDonationRecord
	err = query.
		Order("d.donation_date DESC").
		Order("d.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.DonationDate, ID: last.ID})
	}

	rows := make([]UserDonationSummary, 0, len(records))
	for _, record := range records {
		rows = append(rows, UserDonationSummary{
			ID:            record.ID,
			ProjectID:     record.ProjectID,
			ProjectTitle:  record.ProjectTitle,
			ProjectSlug:   record.ProjectSlug,
			Amount:        record.Amount,
			PaymentMethod: record.PaymentMethod,
			PaymentStatus: record.PaymentStatus,
			IsAnonymous:   record.IsAnonymous,
			DonationDate:  record.DonationDate,
		})
	}
	return &UserDonationList{Donations: rows, NextCursor: nextCursor}, nil
}

type projectDonationRecord struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	IsAnonymous  bool
	Amount       decimal.Decimal
	DonationDate time.Time
}

// ListCompletedByProject returns only completed donations, newest first.
// Donor names are resolved here so anonymity masking cannot be bypassed by a
// caller forgetting to apply it.
func (r *repository) ListCompletedByProject(ctx context.Context, projectID uuid.UUID, params pagination.Params) (*ProjectDonationList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Table("donations d").
		Select("d.id, u.first_name, u.last_name, d.is_anonymous, d.amount, d.donation_date").
		Joins("JOIN users u ON u.id = d.user_id").
		Where("d.project_id = ? AND d.payment_status = ?", projectID, enums.DonationStatusCompleted)

	if cursor != nil {
		query = query.Where("(d.donation_date < ?) OR (d.donation_date = ? AND d.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []projectDonationRecord
	err = query.
		Order("d.donation_date DESC").
		Order("d.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.DonationDate, ID: last.ID})
	}

	rows := make([]ProjectDonationSummary, 0, len(records))
	for _, record := range records {
		name := AnonymousDonorName
		if !record.IsAnonymous {
			name = record.FirstName + " " + record.LastName
		}
		rows = append(rows, ProjectDonationSummary{
			ID:           record.ID,
			DonorName:    name,
			Amount:       record.Amount,
			DonationDate: record.DonationDate,
		})
	}
	return &ProjectDonationList{Donations: rows, NextCursor: nextCursor}, nil
}
