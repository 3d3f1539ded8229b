package domain

import "time"

type ActionKind string

const (
	ActionKindDelete  ActionKind = "delete"
	ActionKindUpgrade ActionKind = "upgrade"
)

type ActionStatus string

const (
	StatusProposed       ActionStatus = "proposed"
	StatusApproved       ActionStatus = "approved"
	StatusRejected       ActionStatus = "rejected"
	StatusExecuting      ActionStatus = "executing"
	StatusSucceeded      ActionStatus = "succeeded"
	StatusFailed         ActionStatus = "failed"
	StatusManualRequired ActionStatus = "manual-required"
)

// Terminal reports whether no further transition is allowed from s.
func (s ActionStatus) Terminal() bool {
	switch s {
	case StatusRejected, StatusSucceeded, StatusFailed, StatusManualRequired:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Action is a proposed or executed remediation, persisted indefinitely as an
// audit record. Only the approval service mutates its status.
type Action struct {
	ID             string
	TenantID       string
	SubscriptionID string
	ResourceID     string
	ResourceName   string
	ResourceType   ResourceType
	Kind           ActionKind
	UpgradeType    string
	Risk           RiskLevel
	Status         ActionStatus

	Analysis         string
	Recommendation   string
	EstimatedSavings string

	ApprovedBy string
	ApprovedAt *time.Time

	// Detail holds the executor's outcome message, kept for audit.
	Detail    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ManualStep is one numbered instruction of a manual remediation guide.
type ManualStep struct {
	Step    int
	Action  string
	Details string
}

// Outcome is the result of executing one approved action.
type Outcome struct {
	Status      ActionStatus // succeeded | failed | manual-required
	Detail      string
	ManualSteps []ManualStep
	Warnings    []string
	PortalURL   string
}
