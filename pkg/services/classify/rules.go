package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
)

// OrphanRule flags a resource with no active consumer. Matching is purely
// structural: attachment fields fetched from the resource graph, never the
// enrichment call.
type OrphanRule struct {
	ID             string
	ResourceType   domain.ResourceType
	Matches        func(domain.Resource) bool
	Analysis       func(domain.Resource) string
	Recommendation string
	Priority       domain.Priority
	Risk           domain.RiskLevel
	// MonthlyCost returns a best-effort estimate string, or "" when no
	// reasonable heuristic exists.
	MonthlyCost func(domain.Resource) string
}

func DefaultOrphanRules() []OrphanRule {
	return []OrphanRule{
		{
			ID:           "orphaned_disk",
			ResourceType: domain.ResourceTypeDisk,
			Matches: func(r domain.Resource) bool {
				return r.ManagedBy == ""
			},
			Analysis: func(r domain.Resource) string {
				return "Orphaned disk - not attached to any VM"
			},
			Recommendation: "Delete the disk or attach it to a VM if the data is still needed",
			Priority:       domain.PriorityMedium,
			Risk:           domain.RiskMedium,
			MonthlyCost: func(r domain.Resource) string {
				if r.DiskSizeGB <= 0 {
					return ""
				}
				return fmt.Sprintf("$%.2f/month estimated", r.DiskSizeGB*0.05)
			},
		},
		{
			ID:           "orphaned_public_ip",
			ResourceType: domain.ResourceTypePublicIP,
			Matches: func(r domain.Resource) bool {
				return r.IPConfigurationID == "" && r.NatGatewayID == ""
			},
			Analysis: func(r domain.Resource) string {
				return "Orphaned public IP - not associated with any network interface, load balancer or NAT gateway"
			},
			Recommendation: "Delete the public IP address to stop the standing charge",
			Priority:       domain.PriorityMedium,
			Risk:           domain.RiskLow,
			MonthlyCost: func(domain.Resource) string {
				return "$3.65/month estimated"
			},
		},
		{
			ID:           "orphaned_nic",
			ResourceType: domain.ResourceTypeNetworkIface,
			Matches: func(r domain.Resource) bool {
				return r.VirtualMachineID == "" && r.PrivateEndpointID == ""
			},
			Analysis: func(r domain.Resource) string {
				return "Orphaned network interface - not attached to any VM or private endpoint"
			},
			Recommendation: "Delete the network interface",
			Priority:       domain.PriorityLow,
			Risk:           domain.RiskLow,
			MonthlyCost:    func(domain.Resource) string { return "" },
		},
		{
			ID:           "orphaned_load_balancer",
			ResourceType: domain.ResourceTypeLoadBalancer,
			Matches: func(r domain.Resource) bool {
				return r.BackendPoolCount == 0
			},
			Analysis: func(r domain.Resource) string {
				return "Orphaned load balancer - no backend address pools configured"
			},
			Recommendation: "Delete the load balancer or configure backend pools",
			Priority:       domain.PriorityMedium,
			Risk:           domain.RiskMedium,
			MonthlyCost: func(domain.Resource) string {
				return "$18.25/month estimated"
			},
		},
	}
}

// DeprecationRule flags a SKU or tier the provider has scheduled for
// retirement, or an advisory configuration worth upgrading. Entries mirror
// the published retirement schedule.
type DeprecationRule struct {
	ID              string
	ResourceType    domain.ResourceType
	Matches         func(domain.Resource) bool
	Issue           string
	Recommendation  string
	RetirementDate  *time.Time
	Complexity      domain.Complexity
	UpgradeType     string
	DefaultPriority domain.Priority
	Risk            domain.RiskLevel
}

// Basic SKU public IPs, Basic load balancers and unmanaged disks share the
// same announced retirement date.
var basicSKURetirement = time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)

func DefaultDeprecationRules() []DeprecationRule {
	retirement := basicSKURetirement
	return []DeprecationRule{
		{
			ID:           "basic_public_ip",
			ResourceType: domain.ResourceTypePublicIP,
			Matches: func(r domain.Resource) bool {
				return strings.EqualFold(r.SKUName, "Basic") || strings.EqualFold(r.SKUTier, "Basic")
			},
			Issue:           "Basic SKU public IP addresses are retired as of September 30, 2025",
			Recommendation:  "Upgrade to Standard SKU public IP for better performance and availability",
			RetirementDate:  &retirement,
			Complexity:      domain.ComplexityLow,
			UpgradeType:     "public_ip",
			DefaultPriority: domain.PriorityHigh,
			Risk:            domain.RiskMedium,
		},
		{
			ID:           "basic_load_balancer",
			ResourceType: domain.ResourceTypeLoadBalancer,
			Matches: func(r domain.Resource) bool {
				return strings.EqualFold(r.SKUName, "Basic") || strings.EqualFold(r.SKUTier, "Basic")
			},
			Issue:           "Basic SKU load balancers are retired as of September 30, 2025",
			Recommendation:  "Upgrade to Standard SKU load balancer for improved features and SLA",
			RetirementDate:  &retirement,
			Complexity:      domain.ComplexityMedium,
			UpgradeType:     "load_balancer",
			DefaultPriority: domain.PriorityHigh,
			Risk:            domain.RiskHigh,
		},
		{
			ID:           "a_series_vm",
			ResourceType: domain.ResourceTypeVirtualMachine,
			Matches: func(r domain.Resource) bool {
				return strings.HasPrefix(r.VMSize, "Standard_A") || strings.HasPrefix(r.VMSize, "Basic_A")
			},
			Issue:           "A-series VM sizes are a previous generation with limited performance",
			Recommendation:  "Resize to a current-generation VM series (Dv5/Ev5) for better price-performance",
			Complexity:      domain.ComplexityMedium,
			UpgradeType:     "virtual_machine",
			DefaultPriority: domain.PriorityMedium,
			Risk:            domain.RiskHigh,
		},
		{
			ID:           "standard_lrs_storage",
			ResourceType: domain.ResourceTypeStorageAccount,
			Matches: func(r domain.Resource) bool {
				return strings.EqualFold(r.SKUName, "Standard_LRS")
			},
			Issue:           "Standard_LRS provides limited redundancy: a single datacenter failure can lose data",
			Recommendation:  "Consider upgrading to ZRS or GRS for better durability",
			Complexity:      domain.ComplexityLow,
			UpgradeType:     "storage_account",
			DefaultPriority: domain.PriorityLow,
			Risk:            domain.RiskLow,
		},
		{
			ID:           "archive_tier_storage",
			ResourceType: domain.ResourceTypeStorageAccount,
			Matches: func(r domain.Resource) bool {
				return strings.EqualFold(r.AccessTier, "Archive")
			},
			Issue:           "Archive access tier has high access costs and long retrieval times",
			Recommendation:  "Review access patterns; move frequently accessed data to Hot or Cool tiers",
			Complexity:      domain.ComplexityLow,
			UpgradeType:     "storage_account",
			DefaultPriority: domain.PriorityLow,
			Risk:            domain.RiskLow,
		},
	}
}

// priorityFor derives a finding priority from retirement proximity: past the
// date is critical, inside the warning window is high, any dated retirement
// is at least medium.
func priorityFor(rule DeprecationRule, now time.Time) domain.Priority {
	if rule.RetirementDate == nil {
		return rule.DefaultPriority
	}
	switch {
	case now.After(*rule.RetirementDate):
		return domain.PriorityCritical
	case rule.RetirementDate.Sub(now) < 180*24*time.Hour:
		return domain.PriorityHigh
	default:
		return domain.PriorityMedium
	}
}
