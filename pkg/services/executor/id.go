package executor

import (
	"fmt"
	"strings"
)

// ResourceID is a parsed ARM resource id:
// /subscriptions/<sub>/resourceGroups/<rg>/providers/<namespace>/<type>/<name>
type ResourceID struct {
	SubscriptionID string
	ResourceGroup  string
	Provider       string
	Type           string
	Name           string
}

func ParseResourceID(id string) (ResourceID, error) {
	parts := strings.Split(strings.Trim(id, "/"), "/")
	if len(parts) < 8 ||
		!strings.EqualFold(parts[0], "subscriptions") ||
		!strings.EqualFold(parts[2], "resourceGroups") ||
		!strings.EqualFold(parts[4], "providers") {
		return ResourceID{}, fmt.Errorf("malformed resource id: %s", id)
	}
	return ResourceID{
		SubscriptionID: parts[1],
		ResourceGroup:  parts[3],
		Provider:       parts[5],
		Type:           parts[6],
		Name:           parts[len(parts)-1],
	}, nil
}

// PortalURL deep-links the resource in the provider console, for the manual
// remediation guides.
func PortalURL(resourceID string) string {
	return "https://portal.azure.com/#@/resource" + resourceID
}
