package executor

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockResourceGateway struct {
	mock.Mock
}

func (m *mockResourceGateway) DeleteByID(ctx context.Context, resourceID string) error {
	args := m.Called(ctx, resourceID)
	return args.Error(0)
}

type mockNetworkGateway struct {
	mock.Mock
}

func (m *mockNetworkGateway) GetPublicIP(ctx context.Context, resourceGroup, name string) (*PublicIPState, error) {
	args := m.Called(ctx, resourceGroup, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PublicIPState), args.Error(1)
}

func (m *mockNetworkGateway) UpgradePublicIPSKU(ctx context.Context, resourceGroup, name string) error {
	args := m.Called(ctx, resourceGroup, name)
	return args.Error(0)
}

func (m *mockNetworkGateway) GetLoadBalancer(ctx context.Context, resourceGroup, name string) (*LoadBalancerState, error) {
	args := m.Called(ctx, resourceGroup, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LoadBalancerState), args.Error(1)
}

func (m *mockNetworkGateway) UpgradeLoadBalancerSKU(ctx context.Context, resourceGroup, name string) error {
	args := m.Called(ctx, resourceGroup, name)
	return args.Error(0)
}

type mockStorageGateway struct {
	mock.Mock
}

func (m *mockStorageGateway) GetStorageAccount(ctx context.Context, resourceGroup, name string) (*StorageAccountState, error) {
	args := m.Called(ctx, resourceGroup, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StorageAccountState), args.Error(1)
}

func (m *mockStorageGateway) UpdateStorageAccountSKU(ctx context.Context, resourceGroup, name, sku string) error {
	args := m.Called(ctx, resourceGroup, name, sku)
	return args.Error(0)
}

const (
	diskID    = "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Compute/disks/d1"
	ipID      = "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Network/publicIPAddresses/ip1"
	lbID      = "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Network/loadBalancers/lb1"
	accountID = "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Storage/storageAccounts/sa1"
)

type gateways struct {
	resources *mockResourceGateway
	network   *mockNetworkGateway
	storage   *mockStorageGateway
}

func newTestExecutor() (Executor, gateways) {
	g := gateways{
		resources: new(mockResourceGateway),
		network:   new(mockNetworkGateway),
		storage:   new(mockStorageGateway),
	}
	return NewExecutor(g.resources, g.network, g.storage), g
}

func armError(statusCode int) *azcore.ResponseError {
	return &azcore.ResponseError{
		StatusCode: statusCode,
		RawResponse: &http.Response{
			StatusCode: statusCode,
			Header:     http.Header{},
			Request: &http.Request{
				Method: http.MethodDelete,
				URL:    &url.URL{Scheme: "https", Host: "management.azure.com"},
			},
		},
	}
}

func deleteAction(status domain.ActionStatus) *domain.Action {
	return &domain.Action{
		ID:         "action-1",
		ResourceID: diskID,
		Kind:       domain.ActionKindDelete,
		Status:     status,
	}
}

func upgradeAction(resourceID, upgradeType string) *domain.Action {
	return &domain.Action{
		ID:          "action-2",
		ResourceID:  resourceID,
		Kind:        domain.ActionKindUpgrade,
		UpgradeType: upgradeType,
		Status:      domain.StatusExecuting,
	}
}

func TestExecutor_Execute_TerminalActionIsNoOp(t *testing.T) {
	exec, g := newTestExecutor()

	act := deleteAction(domain.StatusSucceeded)
	act.Detail = "resource deleted"

	outcome, err := exec.Execute(context.Background(), act)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	assert.Equal(t, "resource deleted", outcome.Detail)
	g.resources.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestExecutor_Delete_Succeeds(t *testing.T) {
	exec, g := newTestExecutor()

	g.resources.On("DeleteByID", mock.Anything, diskID).Return(nil)

	outcome, err := exec.Execute(context.Background(), deleteAction(domain.StatusExecuting))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	g.resources.AssertExpectations(t)
}

func TestExecutor_Delete_ProviderFailureBecomesFailedOutcome(t *testing.T) {
	exec, g := newTestExecutor()

	g.resources.On("DeleteByID", mock.Anything, diskID).Return(armError(http.StatusConflict))

	outcome, err := exec.Execute(context.Background(), deleteAction(domain.StatusExecuting))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Detail, "delete failed")
}

func TestExecutor_Delete_AuthFailurePropagates(t *testing.T) {
	exec, g := newTestExecutor()

	g.resources.On("DeleteByID", mock.Anything, diskID).Return(armError(http.StatusForbidden))

	_, err := exec.Execute(context.Background(), deleteAction(domain.StatusExecuting))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestExecutor_UpgradePublicIP_AlreadyStandardIsNoOp(t *testing.T) {
	exec, g := newTestExecutor()

	g.network.On("GetPublicIP", mock.Anything, "rg", "ip1").
		Return(&PublicIPState{SKUName: "Standard"}, nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(ipID, "public_ip"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	g.network.AssertNotCalled(t, "UpgradePublicIPSKU", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_UpgradePublicIP_AttachedRequiresManualSteps(t *testing.T) {
	exec, g := newTestExecutor()

	g.network.On("GetPublicIP", mock.Anything, "rg", "ip1").
		Return(&PublicIPState{SKUName: "Basic", AttachedTo: "/subscriptions/s1/.../ipconfig1"}, nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(ipID, "public_ip"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusManualRequired, outcome.Status)
	assert.Len(t, outcome.ManualSteps, 6)
	assert.NotEmpty(t, outcome.Warnings)
	assert.Equal(t, "https://portal.azure.com/#@/resource"+ipID, outcome.PortalURL)
	g.network.AssertNotCalled(t, "UpgradePublicIPSKU", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_UpgradePublicIP_DetachedUpgradesInPlace(t *testing.T) {
	exec, g := newTestExecutor()

	g.network.On("GetPublicIP", mock.Anything, "rg", "ip1").
		Return(&PublicIPState{SKUName: "Basic"}, nil)
	g.network.On("UpgradePublicIPSKU", mock.Anything, "rg", "ip1").Return(nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(ipID, "public_ip"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	g.network.AssertExpectations(t)
}

func TestExecutor_UpgradePublicIP_MalformedResourceID(t *testing.T) {
	exec, _ := newTestExecutor()

	act := upgradeAction("not-a-resource-id", "public_ip")

	_, err := exec.Execute(context.Background(), act)

	var permanent *domain.PermanentError
	require.ErrorAs(t, err, &permanent)
	assert.Equal(t, "InvalidResourceID", permanent.Detail)
}

func TestExecutor_UpgradeLoadBalancer_AlreadyStandardIsNoOp(t *testing.T) {
	exec, g := newTestExecutor()

	g.network.On("GetLoadBalancer", mock.Anything, "rg", "lb1").
		Return(&LoadBalancerState{SKUName: "Standard"}, nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(lbID, "load_balancer"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	g.network.AssertNotCalled(t, "UpgradeLoadBalancerSKU", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_UpgradeLoadBalancer_BasicFrontendIPBlocksUpgrade(t *testing.T) {
	exec, g := newTestExecutor()

	g.network.On("GetLoadBalancer", mock.Anything, "rg", "lb1").
		Return(&LoadBalancerState{SKUName: "Basic", FrontendPublicIPs: []string{ipID}}, nil)
	g.network.On("GetPublicIP", mock.Anything, "rg", "ip1").
		Return(&PublicIPState{SKUName: "Basic"}, nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(lbID, "load_balancer"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusManualRequired, outcome.Status)
	assert.Contains(t, outcome.Detail, "ip1")
	assert.NotEmpty(t, outcome.ManualSteps)
	assert.NotEmpty(t, outcome.Warnings)
	assert.Equal(t, "https://portal.azure.com/#@/resource"+lbID, outcome.PortalURL)
	g.network.AssertNotCalled(t, "UpgradeLoadBalancerSKU", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_UpgradeLoadBalancer_StandardFrontendIPUpgradesInPlace(t *testing.T) {
	exec, g := newTestExecutor()

	g.network.On("GetLoadBalancer", mock.Anything, "rg", "lb1").
		Return(&LoadBalancerState{SKUName: "Basic", FrontendPublicIPs: []string{ipID}}, nil)
	g.network.On("GetPublicIP", mock.Anything, "rg", "ip1").
		Return(&PublicIPState{SKUName: "Standard"}, nil)
	g.network.On("UpgradeLoadBalancerSKU", mock.Anything, "rg", "lb1").Return(nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(lbID, "load_balancer"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	assert.Contains(t, outcome.Detail, "Standard")
	g.network.AssertExpectations(t)
}

func TestExecutor_UpgradeLoadBalancer_NoFrontendIPsUpgradesDirectly(t *testing.T) {
	exec, g := newTestExecutor()

	g.network.On("GetLoadBalancer", mock.Anything, "rg", "lb1").
		Return(&LoadBalancerState{SKUName: "Basic"}, nil)
	g.network.On("UpgradeLoadBalancerSKU", mock.Anything, "rg", "lb1").Return(nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(lbID, "load_balancer"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	g.network.AssertNotCalled(t, "GetPublicIP", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_UpgradeLoadBalancer_ProviderFailureBecomesFailedOutcome(t *testing.T) {
	exec, g := newTestExecutor()

	g.network.On("GetLoadBalancer", mock.Anything, "rg", "lb1").
		Return(&LoadBalancerState{SKUName: "Basic"}, nil)
	g.network.On("UpgradeLoadBalancerSKU", mock.Anything, "rg", "lb1").
		Return(armError(http.StatusConflict))

	outcome, err := exec.Execute(context.Background(), upgradeAction(lbID, "load_balancer"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Detail, "SKU upgrade failed")
}

func TestExecutor_UpgradeStorageAccount_LRSBecomesZRS(t *testing.T) {
	exec, g := newTestExecutor()

	g.storage.On("GetStorageAccount", mock.Anything, "rg", "sa1").
		Return(&StorageAccountState{SKUName: "Standard_LRS", Kind: "StorageV2", Location: "westeurope"}, nil)
	g.storage.On("UpdateStorageAccountSKU", mock.Anything, "rg", "sa1", "Standard_ZRS").Return(nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(accountID, "storage_account"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	assert.Contains(t, outcome.Detail, "Standard_ZRS")
	g.storage.AssertExpectations(t)
}

func TestExecutor_UpgradeStorageAccount_GRSBecomesGZRS(t *testing.T) {
	exec, g := newTestExecutor()

	g.storage.On("GetStorageAccount", mock.Anything, "rg", "sa1").
		Return(&StorageAccountState{SKUName: "Standard_GRS", Kind: "StorageV2", Location: "eastus"}, nil)
	g.storage.On("UpdateStorageAccountSKU", mock.Anything, "rg", "sa1", "Standard_GZRS").Return(nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(accountID, "storage_account"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
}

func TestExecutor_UpgradeStorageAccount_AlreadyZoneRedundantIsNoOp(t *testing.T) {
	exec, g := newTestExecutor()

	g.storage.On("GetStorageAccount", mock.Anything, "rg", "sa1").
		Return(&StorageAccountState{SKUName: "Standard_ZRS", Kind: "StorageV2", Location: "westeurope"}, nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(accountID, "storage_account"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	g.storage.AssertNotCalled(t, "UpdateStorageAccountSKU", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_UpgradeStorageAccount_UnsupportedRegionNeedsMigration(t *testing.T) {
	exec, g := newTestExecutor()

	g.storage.On("GetStorageAccount", mock.Anything, "rg", "sa1").
		Return(&StorageAccountState{SKUName: "Standard_LRS", Kind: "StorageV2", Location: "australiacentral"}, nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(accountID, "storage_account"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusManualRequired, outcome.Status)
	assert.Contains(t, outcome.Detail, "australiacentral")
	assert.NotEmpty(t, outcome.ManualSteps)
	g.storage.AssertNotCalled(t, "UpdateStorageAccountSKU", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_UpgradeStorageAccount_PremiumHasNoInPlacePath(t *testing.T) {
	exec, g := newTestExecutor()

	g.storage.On("GetStorageAccount", mock.Anything, "rg", "sa1").
		Return(&StorageAccountState{SKUName: "Premium_LRS", Kind: "StorageV2", Location: "westeurope"}, nil)

	outcome, err := exec.Execute(context.Background(), upgradeAction(accountID, "storage_account"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusManualRequired, outcome.Status)
	assert.Len(t, outcome.ManualSteps, 3)
}

func TestExecutor_Upgrade_UnknownTypeGetsGenericGuide(t *testing.T) {
	exec, g := newTestExecutor()

	act := upgradeAction(diskID, "virtual_machine")
	act.ResourceType = domain.ResourceTypeVirtualMachine

	outcome, err := exec.Execute(context.Background(), act)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusManualRequired, outcome.Status)
	assert.Len(t, outcome.ManualSteps, 3)
	g.network.AssertNotCalled(t, "GetPublicIP", mock.Anything, mock.Anything, mock.Anything)
}

func TestStorageTargetSKU(t *testing.T) {
	assert.Equal(t, "Standard_ZRS", storageTargetSKU("Standard_LRS"))
	assert.Equal(t, "Standard_GZRS", storageTargetSKU("Standard_GRS"))
	assert.Empty(t, storageTargetSKU("Premium_LRS"))
	assert.Empty(t, storageTargetSKU("Standard_ZRS"))
}

func TestParseResourceID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
		want    ResourceID
	}{
		{
			name: "valid public ip id",
			id:   ipID,
			want: ResourceID{
				SubscriptionID: "s1",
				ResourceGroup:  "rg",
				Provider:       "Microsoft.Network",
				Type:           "publicIPAddresses",
				Name:           "ip1",
			},
		},
		{
			name:    "missing providers segment",
			id:      "/subscriptions/s1/resourceGroups/rg/Microsoft.Network/publicIPAddresses/ip1",
			wantErr: true,
		},
		{
			name:    "not a resource id",
			id:      "hello",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseResourceID(tc.id)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, parsed)
		})
	}
}
