package api

type ScanRequest struct {
	Subscriptions []string `json:"subscriptions"`
}

type Finding struct {
	ResourceID           string `json:"resourceId"`
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	ResourceGroup        string `json:"resourceGroup"`
	Location             string `json:"location"`
	SubscriptionID       string `json:"subscriptionId"`
	Category             string `json:"category"`
	Analysis             string `json:"analysis"`
	Recommendation       string `json:"recommendation"`
	Priority             string `json:"priority"`
	EstimatedMonthlyCost string `json:"estimatedMonthlyCost,omitempty"`
	RetirementDate       string `json:"retirementDate,omitempty"`
	MigrationComplexity  string `json:"migrationComplexity,omitempty"`
	UpgradeType          string `json:"upgradeType,omitempty"`
	ActionID             string `json:"actionId"`
}

type ScanResponse struct {
	Resources           []Finding `json:"resources"`
	TotalResources      int       `json:"totalResources"`
	FailedSubscriptions []string  `json:"failedSubscriptions,omitempty"`
	ScanTimestamp       string    `json:"scanTimestamp"`
}
