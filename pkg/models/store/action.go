package store

import "time"

// ActionRecord is the persisted shape of a remediation action. Records are
// append-only apart from status transitions and never deleted; they are the
// audit trail.
type ActionRecord struct {
	ID             string
	TenantID       string
	SubscriptionID string
	ResourceID     string
	ResourceName   string
	ResourceType   string
	Kind           string
	UpgradeType    string
	Risk           string
	Status         string

	Analysis         string
	Recommendation   string
	EstimatedSavings string

	ApprovedBy string
	ApprovedAt *time.Time

	Detail    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
