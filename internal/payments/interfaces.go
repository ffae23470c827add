package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
)

// Repository defines persistence operations for the settlement engine. It
// spans payment transactions plus the donation status writes that settle
// together with them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransaction(ctx context.Context, transaction *models.PaymentTransaction) (*models.PaymentTransaction, error)
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.PaymentTransaction, error)
	FindTransactionDetail(ctx context.Context, id uuid.UUID) (*TransactionDetail, error)
	FindActiveTransactionByDonation(ctx context.Context, donationID uuid.UUID) (*models.PaymentTransaction, error)
	// ConfirmPending flips pending->confirmed with a conditioned update and
	// returns the affected row count. Zero rows means the transaction was
	// already past pending.
	ConfirmPending(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (int64, error)
	MarkTransactionFailed(ctx context.Context, id uuid.UUID) error
	FindDonationByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	UpdateDonationStatus(ctx context.Context, id uuid.UUID, status enums.DonationStatus) error
	AppendSettlementLog(ctx context.Context, event *models.WebhookEvent) error
}
