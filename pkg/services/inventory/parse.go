package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
)

// rawTypes maps provider type strings to the normalized resource types. Only
// listed types are ever scanned.
var rawTypes = map[string]domain.ResourceType{
	"microsoft.compute/disks":             domain.ResourceTypeDisk,
	"microsoft.compute/virtualmachines":   domain.ResourceTypeVirtualMachine,
	"microsoft.network/publicipaddresses": domain.ResourceTypePublicIP,
	"microsoft.network/loadbalancers":     domain.ResourceTypeLoadBalancer,
	"microsoft.network/networkinterfaces": domain.ResourceTypeNetworkIface,
	"microsoft.storage/storageaccounts":   domain.ResourceTypeStorageAccount,
	"microsoft.sql/servers/databases":     domain.ResourceTypeSQLInstance,
}

// SupportedTypes returns the normalized resource types the scanner knows how
// to fetch, sorted for stable output.
func SupportedTypes() []domain.ResourceType {
	types := make([]domain.ResourceType, 0, len(rawTypes))
	for _, t := range rawTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// buildQuery renders the Resource Graph KQL for the requested types. An empty
// filter scans every supported type.
func buildQuery(types []domain.ResourceType) string {
	include := make([]string, 0, len(rawTypes))
	if len(types) == 0 {
		for raw := range rawTypes {
			include = append(include, raw)
		}
	} else {
		wanted := make(map[domain.ResourceType]bool, len(types))
		for _, t := range types {
			wanted[t] = true
		}
		for raw, normalized := range rawTypes {
			if wanted[normalized] {
				include = append(include, raw)
			}
		}
	}

	quoted := make([]string, len(include))
	for i, t := range include {
		quoted[i] = fmt.Sprintf("'%s'", t)
	}

	return fmt.Sprintf(`resources
| where type in~ (%s)
| project id, name, type, location, resourceGroup, subscriptionId, managedBy, sku, properties, tags`,
		strings.Join(quoted, ", "))
}

func parseResource(row map[string]any, subscriptionID string) domain.Resource {
	rawType := strings.ToLower(stringField(row, "type"))
	normalized, ok := rawTypes[rawType]
	if !ok {
		normalized = domain.ResourceTypeUnknown
	}

	res := domain.Resource{
		ID:             stringField(row, "id"),
		Name:           stringField(row, "name"),
		Type:           normalized,
		RawType:        rawType,
		Location:       stringField(row, "location"),
		ResourceGroup:  stringField(row, "resourceGroup"),
		SubscriptionID: stringField(row, "subscriptionId"),
		ManagedBy:      stringField(row, "managedBy"),
		Tags:           stringMapField(row, "tags"),
	}
	if res.SubscriptionID == "" {
		res.SubscriptionID = subscriptionID
	}

	if sku, ok := row["sku"].(map[string]any); ok {
		res.SKUName = stringField(sku, "name")
		res.SKUTier = stringField(sku, "tier")
	}

	props, _ := row["properties"].(map[string]any)
	if props == nil {
		return res
	}

	// SKU occasionally lives under properties rather than top-level.
	if res.SKUName == "" {
		if sku, ok := props["sku"].(map[string]any); ok {
			res.SKUName = stringField(sku, "name")
			res.SKUTier = stringField(sku, "tier")
		}
	}

	switch normalized {
	case domain.ResourceTypeDisk:
		res.DiskSizeGB = floatField(props, "diskSizeGB")
	case domain.ResourceTypePublicIP:
		res.IPConfigurationID = nestedID(props, "ipConfiguration")
		res.NatGatewayID = nestedID(props, "natGateway")
	case domain.ResourceTypeNetworkIface:
		res.VirtualMachineID = nestedID(props, "virtualMachine")
		res.PrivateEndpointID = nestedID(props, "privateEndpoint")
	case domain.ResourceTypeLoadBalancer:
		if pools, ok := props["backendAddressPools"].([]any); ok {
			res.BackendPoolCount = len(pools)
		}
	case domain.ResourceTypeVirtualMachine:
		if hw, ok := props["hardwareProfile"].(map[string]any); ok {
			res.VMSize = stringField(hw, "vmSize")
		}
	case domain.ResourceTypeStorageAccount:
		res.AccessTier = stringField(props, "accessTier")
	}

	return res
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func nestedID(m map[string]any, key string) string {
	nested, ok := m[key].(map[string]any)
	if !ok {
		return ""
	}
	return stringField(nested, "id")
}

func stringMapField(m map[string]any, key string) map[string]string {
	raw, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
