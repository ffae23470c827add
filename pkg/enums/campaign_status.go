package enums

import "fmt"

// CampaignStatus is the owner-governed fundraising-activity state of a project.
// It is an independent axis from ApprovalStatus.
type CampaignStatus string

const (
	CampaignStatusNotStarted CampaignStatus = "not_started"
	CampaignStatusActive     CampaignStatus = "active"
	CampaignStatusPaused     CampaignStatus = "paused"
	CampaignStatusFinished   CampaignStatus = "finished"
)

var validCampaignStatuses = []CampaignStatus{
	CampaignStatusNotStarted,
	CampaignStatusActive,
	CampaignStatusPaused,
	CampaignStatusFinished,
}

// String implements fmt.Stringer.
func (s CampaignStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CampaignStatus.
func (s CampaignStatus) IsValid() bool {
	for _, candidate := range validCampaignStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCampaignStatus converts raw input into a CampaignStatus.
func ParseCampaignStatus(value string) (CampaignStatus, error) {
	for _, candidate := range validCampaignStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign status %q", value)
}
