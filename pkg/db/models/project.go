package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/pkg/enums"
)

// Project is a fundraising campaign owned by a creator.
//
// ApprovalStatus and CampaignStatus are independent axes: moderation governs
// visibility/editability, campaign status governs whether donations may be
// accepted. A campaign may only become active once the project is published.
//
// RaisedAmount is never written directly; it is the SUM(amount) over completed
// donations and is resolved on the read path.
type Project struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID       uuid.UUID            `gorm:"column:creator_id;type:uuid;not null;index"`
	Title           string               `gorm:"column:title;type:text;not null"`
	Slug            string               `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Description     string               `gorm:"column:description;type:text;not null"`
	FinancialGoal   decimal.Decimal      `gorm:"column:financial_goal;type:numeric(12,2);not null"`
	CategoryID      uuid.UUID            `gorm:"column:category_id;type:uuid;not null"`
	Location        *string              `gorm:"column:location"`
	StartDate       *time.Time           `gorm:"column:start_date"`
	EndDate         time.Time            `gorm:"column:end_date;not null"`
	ApprovalStatus  enums.ApprovalStatus `gorm:"column:approval_status;type:text;not null;default:'draft'"`
	CampaignStatus  enums.CampaignStatus `gorm:"column:campaign_status;type:text;not null;default:'not_started'"`
	ProofDocumentID *uuid.UUID           `gorm:"column:proof_document_id;type:uuid"`
	Category        *Category            `gorm:"foreignKey:CategoryID"`
	Creator         *User                `gorm:"foreignKey:CreatorID"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
