package enums

import "fmt"

// ApprovalStatus is the admin-governed moderation state of a project.
type ApprovalStatus string

const (
	ApprovalStatusDraft     ApprovalStatus = "draft"
	ApprovalStatusInReview  ApprovalStatus = "in_review"
	ApprovalStatusObserved  ApprovalStatus = "observed"
	ApprovalStatusRejected  ApprovalStatus = "rejected"
	ApprovalStatusPublished ApprovalStatus = "published"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusDraft,
	ApprovalStatusInReview,
	ApprovalStatusObserved,
	ApprovalStatusRejected,
	ApprovalStatusPublished,
}

// String implements fmt.Stringer.
func (s ApprovalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApprovalStatus.
func (s ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseApprovalStatus converts raw input into an ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}
