package domain

// SubscriptionSpend is the aggregated actual cost of one subscription over a
// trailing window. Unlike the per-finding estimates, this comes from the
// provider's cost management API and reflects real billing data.
type SubscriptionSpend struct {
	SubscriptionID string
	Days           int
	Total          float64
	Currency       string
}
