package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/pkg/enums"
)

// CreateTransactionInput captures the fields of a new settlement record.
type CreateTransactionInput struct {
	DonationID uuid.UUID
	Amount     decimal.Decimal
	Method     enums.PaymentMethod
}

// TransactionDetail is the settlement read model, joined with the donation
// and project for display.
type TransactionDetail struct {
	ID           uuid.UUID               `json:"id"`
	DonationID   uuid.UUID               `json:"donation_id"`
	ProjectID    uuid.UUID               `json:"project_id"`
	ProjectTitle string                  `json:"project_title"`
	ProjectSlug  string                  `json:"project_slug"`
	Provider     string                  `json:"provider"`
	Method       enums.PaymentMethod     `json:"method"`
	Amount       decimal.Decimal         `json:"amount"`
	Currency     enums.Currency          `json:"currency"`
	Status       enums.TransactionStatus `json:"status"`
	ConfirmedAt  *time.Time              `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

// settlementLogPayload is the confirmation row recorded alongside a
// successful settlement.
type settlementLogPayload struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	DonationID    uuid.UUID       `json:"donation_id"`
	Amount        decimal.Decimal `json:"amount"`
	ConfirmedAt   time.Time       `json:"confirmed_at"`
}
