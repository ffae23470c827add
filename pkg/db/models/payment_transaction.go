package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/pkg/enums"
)

// PaymentTransaction is the settlement record tracking whether money actually
// moved for a donation. One non-failed transaction may exist per donation
// (partial unique index payment_transactions_active_donation_key). Amount must
// equal the bound donation's amount at creation time. ConfirmedAt is set
// exactly once, by the conditioned confirmation update.
type PaymentTransaction struct {
	ID          uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DonationID  uuid.UUID               `gorm:"column:donation_id;type:uuid;not null;index"`
	Provider    string                  `gorm:"column:provider;type:text;not null"`
	Method      enums.PaymentMethod     `gorm:"column:method;type:text;not null"`
	Amount      decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency    enums.Currency          `gorm:"column:currency;type:text;not null;default:'PEN'"`
	Status      enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ConfirmedAt *time.Time              `gorm:"column:confirmed_at"`
	Donation    *Donation               `gorm:"foreignKey:DonationID"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
