package domain

type ResourceType string

const (
	ResourceTypeDisk           ResourceType = "disk"
	ResourceTypePublicIP       ResourceType = "public-ip"
	ResourceTypeLoadBalancer   ResourceType = "load-balancer"
	ResourceTypeNetworkIface   ResourceType = "network-interface"
	ResourceTypeVirtualMachine ResourceType = "virtual-machine"
	ResourceTypeStorageAccount ResourceType = "storage-account"
	ResourceTypeSQLInstance    ResourceType = "sql-instance"
	ResourceTypeUnknown        ResourceType = "unknown"
)

// Resource is one cloud resource as discovered by a scan. It is a view into
// the live environment, re-fetched on every scan, never persisted on its own.
type Resource struct {
	ID             string
	Name           string
	Type           ResourceType
	RawType        string // provider type, e.g. "microsoft.compute/disks"
	Location       string
	ResourceGroup  string
	SubscriptionID string

	SKUName string
	SKUTier string

	// Attachment fields used by the orphan rules.
	ManagedBy         string // disks: owning VM id
	IPConfigurationID string // public IPs: attached NIC/LB frontend config
	NatGatewayID      string
	VirtualMachineID  string // NICs: owning VM id
	PrivateEndpointID string
	BackendPoolCount  int // load balancers

	DiskSizeGB float64
	VMSize     string
	AccessTier string

	Tags map[string]string
}

// Attached reports whether the resource has any active consumer.
func (r Resource) Attached() bool {
	switch r.Type {
	case ResourceTypeDisk:
		return r.ManagedBy != ""
	case ResourceTypePublicIP:
		return r.IPConfigurationID != "" || r.NatGatewayID != ""
	case ResourceTypeNetworkIface:
		return r.VirtualMachineID != "" || r.PrivateEndpointID != ""
	case ResourceTypeLoadBalancer:
		return r.BackendPoolCount > 0
	default:
		return true
	}
}

type Subscription struct {
	ID          string
	DisplayName string
	State       string
}
