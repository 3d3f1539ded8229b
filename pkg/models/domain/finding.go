package domain

import "time"

type Category string

const (
	CategoryOrphaned   Category = "orphaned"
	CategoryDeprecated Category = "deprecated"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Finding is the result of classifying one resource in one scan. Findings are
// transient: approvals reference the resource id, not a stored finding id.
type Finding struct {
	Resource       Resource
	Category       Category
	RuleID         string
	Analysis       string
	Recommendation string
	Priority       Priority
	Risk           RiskLevel

	// EstimatedMonthlyCost is a best-effort heuristic, not billing data.
	EstimatedMonthlyCost string

	// Deprecation-only fields.
	RetirementDate      *time.Time
	MigrationComplexity Complexity
	UpgradeType         string

	// Enriched reports whether the analysis/recommendation came from the
	// advisory enrichment call rather than the rule template alone.
	Enriched bool
}

type ScanResult struct {
	Orphaned   []Finding
	Deprecated []Finding
}
