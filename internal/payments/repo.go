package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, transaction *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, err
	}
	return transaction, nil
}

func (r *repository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.PaymentTransaction, error) {
	var transaction models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *repository) FindTransactionDetail(ctx context.Context, id uuid.UUID) (*TransactionDetail, error) {
	var detail TransactionDetail
	err := r.db.WithContext(ctx).
		Table("payment_transactions t").
		Select("t.id, t.donation_id, d.project_id, p.title AS project_title, p.slug AS project_slug, t.provider, t.method, t.amount, t.currency, t.status, t.confirmed_at, t.created_at").
		Joins("JOIN donations d ON d.id = t.donation_id").
		Joins("JOIN projects p ON p.id = d.project_id").
		Where("t.id = ?", id).
		Take(&detail).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *repository) FindActiveTransactionByDonation(ctx context.Context, donationID uuid.UUID) (*models.PaymentTransaction, error) {
	var transaction models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("donation_id = ? AND status <> ?", donationID, enums.TransactionStatusFailed).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// ConfirmPending is the conditioned settlement write. The WHERE on status
// makes concurrent confirmations mutually exclusive; callers must check the
// returned row count.
func (r *repository) ConfirmPending(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, enums.TransactionStatusPending).
		Updates(map[string]any{
			"status":       enums.TransactionStatusConfirmed,
			"confirmed_at": confirmedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) MarkTransactionFailed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, enums.TransactionStatusPending).
		Update("status", enums.TransactionStatusFailed).
		Error
}

func (r *repository) FindDonationByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) UpdateDonationStatus(ctx context.Context, id uuid.UUID, status enums.DonationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ?", id).
		Update("payment_status", status).
		Error
}

func (r *repository) AppendSettlementLog(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
