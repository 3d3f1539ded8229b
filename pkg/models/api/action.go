package api

import "time"

type DeleteRequest struct {
	ResourceID string `json:"resourceId"`
}

type UpgradeRequest struct {
	ResourceID  string `json:"resourceId"`
	UpgradeType string `json:"upgradeType,omitempty"`
}

type ManualStep struct {
	Step    int    `json:"step"`
	Action  string `json:"action"`
	Details string `json:"details"`
}

type ActionResponse struct {
	ActionID              string       `json:"actionId"`
	ResourceID            string       `json:"resourceId"`
	Status                string       `json:"status"`
	Detail                string       `json:"detail,omitempty"`
	ManualUpgradeRequired bool         `json:"manualUpgradeRequired,omitempty"`
	ManualSteps           []ManualStep `json:"manualSteps,omitempty"`
	Warnings              []string     `json:"warnings,omitempty"`
	PortalURL             string       `json:"portalUrl,omitempty"`
}

type Action struct {
	ID               string     `json:"id"`
	SubscriptionID   string     `json:"subscriptionId"`
	ResourceID       string     `json:"resourceId"`
	ResourceName     string     `json:"resourceName"`
	ResourceType     string     `json:"resourceType"`
	Kind             string     `json:"kind"`
	Risk             string     `json:"risk"`
	Status           string     `json:"status"`
	Analysis         string     `json:"analysis,omitempty"`
	Recommendation   string     `json:"recommendation,omitempty"`
	EstimatedSavings string     `json:"estimatedSavings,omitempty"`
	ApprovedBy       string     `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	Detail           string     `json:"detail,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type Error struct {
	Kind       string `json:"kind"`
	Detail     string `json:"detail"`
	Status     string `json:"currentStatus,omitempty"`
	RetryAfter int    `json:"retryAfterSeconds,omitempty"`
}
