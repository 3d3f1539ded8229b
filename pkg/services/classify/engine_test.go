package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAdvisor struct {
	mock.Mock
}

func (m *mockAdvisor) Advise(ctx context.Context, finding domain.Finding) (*Advice, error) {
	args := m.Called(ctx, finding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Advice), args.Error(1)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEngine_Classify_OrphanRules(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name         string
		resource     domain.Resource
		expectRule   string
		expectedCost string
	}{
		{
			name: "unattached disk",
			resource: domain.Resource{
				ID:         "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Compute/disks/d1",
				Name:       "d1",
				Type:       domain.ResourceTypeDisk,
				DiskSizeGB: 100,
			},
			expectRule:   "orphaned_disk",
			expectedCost: "$5.00/month estimated",
		},
		{
			name: "detached public ip",
			resource: domain.Resource{
				ID:   "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Network/publicIPAddresses/ip1",
				Name: "ip1",
				Type: domain.ResourceTypePublicIP,
			},
			expectRule:   "orphaned_public_ip",
			expectedCost: "$3.65/month estimated",
		},
		{
			name: "nic without vm or private endpoint",
			resource: domain.Resource{
				ID:   "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Network/networkInterfaces/nic1",
				Name: "nic1",
				Type: domain.ResourceTypeNetworkIface,
			},
			expectRule: "orphaned_nic",
		},
		{
			name: "load balancer without backend pools",
			resource: domain.Resource{
				ID:   "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Network/loadBalancers/lb1",
				Name: "lb1",
				Type: domain.ResourceTypeLoadBalancer,
			},
			expectRule:   "orphaned_load_balancer",
			expectedCost: "$18.25/month estimated",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := engine.Classify(context.Background(), []domain.Resource{tc.resource})

			require.Len(t, result.Orphaned, 1)
			assert.Empty(t, result.Deprecated)

			finding := result.Orphaned[0]
			assert.Equal(t, tc.expectRule, finding.RuleID)
			assert.Equal(t, domain.CategoryOrphaned, finding.Category)
			assert.Equal(t, tc.expectedCost, finding.EstimatedMonthlyCost)
			assert.NotEmpty(t, finding.Analysis)
			assert.NotEmpty(t, finding.Recommendation)
		})
	}
}

func TestEngine_Classify_AttachedResourcesNotFlagged(t *testing.T) {
	engine := NewEngine()

	resources := []domain.Resource{
		{Type: domain.ResourceTypeDisk, ManagedBy: "/subscriptions/s1/.../vm1"},
		{Type: domain.ResourceTypePublicIP, IPConfigurationID: "/subscriptions/s1/.../ipconfig1"},
		{Type: domain.ResourceTypePublicIP, NatGatewayID: "/subscriptions/s1/.../nat1"},
		{Type: domain.ResourceTypeNetworkIface, VirtualMachineID: "/subscriptions/s1/.../vm1"},
		{Type: domain.ResourceTypeLoadBalancer, BackendPoolCount: 2},
		{Type: domain.ResourceTypeUnknown},
	}

	result := engine.Classify(context.Background(), resources)
	assert.Empty(t, result.Orphaned)
	assert.Empty(t, result.Deprecated)
}

func TestEngine_Classify_DeprecationRules(t *testing.T) {
	// Well before the Basic SKU retirement so dated rules land on medium.
	engine := NewEngine(WithClock(fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))

	tests := []struct {
		name       string
		resource   domain.Resource
		expectRule string
	}{
		{
			name: "basic sku public ip",
			resource: domain.Resource{
				Type:              domain.ResourceTypePublicIP,
				SKUName:           "Basic",
				IPConfigurationID: "/subscriptions/s1/.../ipconfig1",
			},
			expectRule: "basic_public_ip",
		},
		{
			name: "basic sku load balancer",
			resource: domain.Resource{
				Type:             domain.ResourceTypeLoadBalancer,
				SKUName:          "Basic",
				BackendPoolCount: 1,
			},
			expectRule: "basic_load_balancer",
		},
		{
			name: "a-series vm",
			resource: domain.Resource{
				Type:   domain.ResourceTypeVirtualMachine,
				VMSize: "Standard_A2",
			},
			expectRule: "a_series_vm",
		},
		{
			name: "standard lrs storage",
			resource: domain.Resource{
				Type:    domain.ResourceTypeStorageAccount,
				SKUName: "Standard_LRS",
			},
			expectRule: "standard_lrs_storage",
		},
		{
			name: "archive tier storage",
			resource: domain.Resource{
				Type:       domain.ResourceTypeStorageAccount,
				SKUName:    "Standard_GRS",
				AccessTier: "Archive",
			},
			expectRule: "archive_tier_storage",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := engine.Classify(context.Background(), []domain.Resource{tc.resource})

			assert.Empty(t, result.Orphaned)
			require.Len(t, result.Deprecated, 1)

			finding := result.Deprecated[0]
			assert.Equal(t, tc.expectRule, finding.RuleID)
			assert.Equal(t, domain.CategoryDeprecated, finding.Category)
			assert.NotEmpty(t, finding.UpgradeType)
			assert.False(t, finding.Enriched)
		})
	}
}

func TestEngine_Classify_OrphanWinsOverDeprecation(t *testing.T) {
	engine := NewEngine()

	// A detached Basic public IP matches both rule sets; it must only be
	// reported once, as orphaned.
	resource := domain.Resource{
		ID:      "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Network/publicIPAddresses/ip1",
		Type:    domain.ResourceTypePublicIP,
		SKUName: "Basic",
	}

	result := engine.Classify(context.Background(), []domain.Resource{resource})
	require.Len(t, result.Orphaned, 1)
	assert.Empty(t, result.Deprecated)
	assert.Equal(t, "orphaned_public_ip", result.Orphaned[0].RuleID)
}

func TestEngine_Classify_RetirementPriority(t *testing.T) {
	resource := domain.Resource{
		Type:              domain.ResourceTypePublicIP,
		SKUName:           "Basic",
		IPConfigurationID: "/subscriptions/s1/.../ipconfig1",
	}

	tests := []struct {
		name     string
		now      time.Time
		expected domain.Priority
	}{
		{
			name:     "retirement passed",
			now:      time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
			expected: domain.PriorityCritical,
		},
		{
			name:     "inside warning window",
			now:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			expected: domain.PriorityHigh,
		},
		{
			name:     "far from retirement",
			now:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: domain.PriorityMedium,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewEngine(WithClock(fixedClock(tc.now)))
			result := engine.Classify(context.Background(), []domain.Resource{resource})
			require.Len(t, result.Deprecated, 1)
			assert.Equal(t, tc.expected, result.Deprecated[0].Priority)
		})
	}
}

func TestEngine_Classify_AdvisorEnrichesFindings(t *testing.T) {
	advisor := new(mockAdvisor)
	advisor.On("Advise", mock.Anything, mock.Anything).
		Return(&Advice{
			Analysis:            "detailed analysis",
			Recommendation:      "detailed recommendation",
			Priority:            domain.PriorityCritical,
			MigrationComplexity: domain.ComplexityHigh,
		}, nil)

	engine := NewEngine(WithAdvisor(advisor, time.Second))

	resource := domain.Resource{
		Type:   domain.ResourceTypeVirtualMachine,
		VMSize: "Standard_A1",
	}
	result := engine.Classify(context.Background(), []domain.Resource{resource})

	require.Len(t, result.Deprecated, 1)
	finding := result.Deprecated[0]
	assert.True(t, finding.Enriched)
	assert.Equal(t, "detailed analysis", finding.Analysis)
	assert.Equal(t, "detailed recommendation", finding.Recommendation)
	assert.Equal(t, domain.PriorityCritical, finding.Priority)
	assert.Equal(t, domain.ComplexityHigh, finding.MigrationComplexity)
	advisor.AssertExpectations(t)
}

func TestEngine_Classify_AdvisorFailureFallsBackToRules(t *testing.T) {
	advisor := new(mockAdvisor)
	advisor.On("Advise", mock.Anything, mock.Anything).
		Return(nil, errors.New("model unavailable"))

	engine := NewEngine(WithAdvisor(advisor, time.Second))

	resource := domain.Resource{
		Type:   domain.ResourceTypeVirtualMachine,
		VMSize: "Standard_A1",
	}
	result := engine.Classify(context.Background(), []domain.Resource{resource})

	require.Len(t, result.Deprecated, 1)
	finding := result.Deprecated[0]
	assert.False(t, finding.Enriched)
	assert.Equal(t, "a_series_vm", finding.RuleID)
	assert.NotEmpty(t, finding.Analysis)
}

func TestEngine_Classify_AdvisorNotCalledForOrphans(t *testing.T) {
	advisor := new(mockAdvisor)
	engine := NewEngine(WithAdvisor(advisor, time.Second))

	resource := domain.Resource{Type: domain.ResourceTypeDisk, Name: "d1"}
	result := engine.Classify(context.Background(), []domain.Resource{resource})

	require.Len(t, result.Orphaned, 1)
	advisor.AssertNotCalled(t, "Advise", mock.Anything, mock.Anything)
}
