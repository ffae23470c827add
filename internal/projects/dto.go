package projects

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/pkg/enums"
)

// CreateProjectInput captures the fields a creator supplies for a new project.
type CreateProjectInput struct {
	CreatorID       uuid.UUID
	Title           string
	Description     string
	FinancialGoal   decimal.Decimal
	CategoryID      uuid.UUID
	Location        *string
	StartDate       *time.Time
	EndDate         time.Time
	ProofDocumentID *uuid.UUID
}

// ApprovalDecisionInput carries an admin's resolution for a project in review.
type ApprovalDecisionInput struct {
	ProjectID   uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.MemberRole
	Decision    enums.ApprovalStatus
	Reason      *string
}

// CampaignTransitionInput carries a requested campaign status change. Only
// the project's creator may change the campaign axis.
type CampaignTransitionInput struct {
	ProjectID   uuid.UUID
	ActorUserID uuid.UUID
	Target      enums.CampaignStatus
}

// CategorySummary is the embedded category shape on project reads.
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CreatorSummary is the embedded creator shape on project reads.
type CreatorSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
}

// ProjectDetail is the full read model for a single project, including the
// derived raised amount.
type ProjectDetail struct {
	ID              uuid.UUID            `json:"id"`
	Title           string               `json:"title"`
	Slug            string               `json:"slug"`
	Description     string               `json:"description"`
	FinancialGoal   decimal.Decimal      `json:"financial_goal"`
	RaisedAmount    decimal.Decimal      `json:"raised_amount"`
	Location        *string              `json:"location,omitempty"`
	StartDate       *time.Time           `json:"start_date,omitempty"`
	EndDate         time.Time            `json:"end_date"`
	ApprovalStatus  enums.ApprovalStatus `json:"approval_status"`
	CampaignStatus  enums.CampaignStatus `json:"campaign_status"`
	ProofDocumentID *uuid.UUID           `json:"proof_document_id,omitempty"`
	Category        *CategorySummary     `json:"category,omitempty"`
	Creator         *CreatorSummary      `json:"creator,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ProjectSummary is the condensed shape returned by list endpoints.
type ProjectSummary struct {
	ID             uuid.UUID            `json:"id"`
	Title          string               `json:"title"`
	Slug           string               `json:"slug"`
	FinancialGoal  decimal.Decimal      `json:"financial_goal"`
	RaisedAmount   decimal.Decimal      `json:"raised_amount"`
	EndDate        time.Time            `json:"end_date"`
	ApprovalStatus enums.ApprovalStatus `json:"approval_status"`
	CampaignStatus enums.CampaignStatus `json:"campaign_status"`
	Category       *CategorySummary     `json:"category,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ProjectList wraps a page of projects plus the next page cursor.
type ProjectList struct {
	Projects   []ProjectSummary `json:"projects"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ListFilters describe the inputs supported by the public project list.
type ListFilters struct {
	CategoryID     *uuid.UUID
	CampaignStatus *enums.CampaignStatus
	Query          string
}

// HistoryEntry is a single row of the project's status audit trail.
type HistoryEntry struct {
	ID         uuid.UUID `json:"id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ChangedBy  uuid.UUID `json:"changed_by"`
	Reason     *string   `json:"reason,omitempty"`
	ChangeDate time.Time `json:"change_date"`
}
