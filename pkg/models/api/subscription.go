package api

type Subscription struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	State       string `json:"state"`
}

type SubscriptionCost struct {
	SubscriptionID string  `json:"subscriptionId"`
	Days           int     `json:"days"`
	TotalCost      float64 `json:"totalCost"`
	Currency       string  `json:"currency"`
}
