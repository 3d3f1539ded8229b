package executor

import (
	"fmt"
	"strings"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
)

func publicIPManualSteps(resourceName string) []domain.ManualStep {
	return []domain.ManualStep{
		{Step: 1, Action: "Navigate to Azure Portal", Details: "Open portal.azure.com and search for 'Public IP addresses'"},
		{Step: 2, Action: "Locate your public IP", Details: fmt.Sprintf("Find and open: %s", resourceName)},
		{Step: 3, Action: "Check associations", Details: "Note the attached resources (VMs, load balancers, NICs)"},
		{Step: 4, Action: "Dissociate", Details: "Detach the public IP from its associated resources"},
		{Step: 5, Action: "Upgrade SKU", Details: "Configuration -> change SKU from Basic to Standard -> Save"},
		{Step: 6, Action: "Re-associate", Details: "Re-attach the public IP to the original resources"},
	}
}

func publicIPManualWarnings() []string {
	return []string{
		"The dissociate/upgrade/re-associate cycle causes temporary downtime",
		"Standard SKU has different pricing than Basic",
	}
}

func loadBalancerManualSteps(blockingIPs []string) []domain.ManualStep {
	return []domain.ManualStep{
		{Step: 1, Action: "Upgrade frontend public IPs", Details: fmt.Sprintf("Upgrade these public IPs to Standard SKU: %s", strings.Join(blockingIPs, ", "))},
		{Step: 2, Action: "Verify frontend configuration", Details: "Confirm every frontend IP configuration now references a Standard SKU public IP"},
		{Step: 3, Action: "Re-run the upgrade", Details: "Trigger the load balancer upgrade again once the IPs are Standard"},
	}
}

func loadBalancerManualWarnings() []string {
	return []string{
		"Upgrading attached public IPs causes temporary downtime while they are dissociated",
		"Standard SKU load balancers have different pricing than Basic",
	}
}

func storageAccountManualSteps(resourceName string) []domain.ManualStep {
	return []domain.ManualStep{
		{Step: 1, Action: "Navigate to Azure Portal", Details: fmt.Sprintf("Open portal.azure.com and open storage account: %s", resourceName)},
		{Step: 2, Action: "Review redundancy options", Details: "Settings -> Redundancy lists the replication types available in this region"},
		{Step: 3, Action: "Plan a migration", Details: "Changing the account kind or region requires creating a new account and copying the data with AzCopy"},
	}
}

func genericManualSteps() []domain.ManualStep {
	return []domain.ManualStep{
		{Step: 1, Action: "Navigate to Azure Portal", Details: "Open portal.azure.com and locate the resource"},
		{Step: 2, Action: "Review upgrade options", Details: "Check the available configuration upgrades for this resource type"},
		{Step: 3, Action: "Apply the upgrade", Details: "Follow the portal guidance to complete the upgrade"},
	}
}
