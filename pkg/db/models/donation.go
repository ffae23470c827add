package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/pkg/enums"
)

// Donation is a user's pledge against a project, distinct from its settlement
// transaction. Created pending by donation intake; its PaymentStatus is
// mutated only by the settlement engine.
type Donation struct {
	ID               uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID        uuid.UUID            `gorm:"column:project_id;type:uuid;not null;index"`
	UserID           uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Amount           decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	PaymentMethod    enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus    enums.DonationStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	IsAnonymous      bool                 `gorm:"column:is_anonymous;not null;default:false"`
	PaymentReference *string              `gorm:"column:payment_reference"`
	DonationDate     time.Time            `gorm:"column:donation_date;autoCreateTime"`
	Project          *Project             `gorm:"foreignKey:ProjectID"`
	Donor            *User                `gorm:"foreignKey:UserID"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
