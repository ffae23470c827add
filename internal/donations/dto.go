package donations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/pkg/enums"
)

// AnonymousDonorName is the display name shown instead of the donor's real
// name when a donation was marked anonymous. The donor id is still recorded
// internally.
const AnonymousDonorName = "Donante Anónimo"

// CreateDonationInput captures the fields of a new pledge.
type CreateDonationInput struct {
	ProjectID        uuid.UUID
	UserID           uuid.UUID
	Amount           decimal.Decimal
	PaymentMethod    enums.PaymentMethod
	IsAnonymous      bool
	PaymentReference *string
}

// DonationDetail is the full read model for a single donation.
type DonationDetail struct {
	ID               uuid.UUID            `json:"id"`
	ProjectID        uuid.UUID            `json:"project_id"`
	UserID           uuid.UUID            `json:"user_id"`
	Amount           decimal.Decimal      `json:"amount"`
	PaymentMethod    enums.PaymentMethod  `json:"payment_method"`
	PaymentStatus    enums.DonationStatus `json:"payment_status"`
	IsAnonymous      bool                 `json:"is_anonymous"`
	PaymentReference *string              `json:"payment_reference,omitempty"`
	DonationDate     time.Time            `json:"donation_date"`
}

// UserDonationSummary is one row of a donor's own donation history, joined
// with the project for display.
type UserDonationSummary struct {
	ID            uuid.UUID            `json:"id"`
	ProjectID     uuid.UUID            `json:"project_id"`
	ProjectTitle  string               `json:"project_title"`
	ProjectSlug   string               `json:"project_slug"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod enums.PaymentMethod  `json:"payment_method"`
	PaymentStatus enums.DonationStatus `json:"payment_status"`
	IsAnonymous   bool                 `json:"is_anonymous"`
	DonationDate  time.Time            `json:"donation_date"`
}

// UserDonationList wraps a page of a donor's donations.
type UserDonationList struct {
	Donations  []UserDonationSummary `json:"donations"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// ProjectDonationSummary is one row of a project's public donation list.
// DonorName is already masked for anonymous donations.
type ProjectDonationSummary struct {
	ID           uuid.UUID       `json:"id"`
	DonorName    string          `json:"donor_name"`
	Amount       decimal.Decimal `json:"amount"`
	DonationDate time.Time       `json:"donation_date"`
}

// ProjectDonationList wraps a page of a project's completed donations.
type ProjectDonationList struct {
	Donations  []ProjectDonationSummary `json:"donations"`
	NextCursor string                   `json:"next_cursor,omitempty"`
}
