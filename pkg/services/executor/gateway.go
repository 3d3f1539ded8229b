package executor

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
)

// deleteAPIVersion is the generic resources api-version used for deletes of
// arbitrary resource types.
const deleteAPIVersion = "2022-09-01"

// Factory builds an Executor bound to one credential and subscription. The
// remediation service calls it per action with the caller's token credential.
type Factory func(cred azcore.TokenCredential, subscriptionID string) (Executor, error)

func NewARMExecutorFactory() Factory {
	return func(cred azcore.TokenCredential, subscriptionID string) (Executor, error) {
		resClient, err := armresources.NewClient(subscriptionID, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create resources client: %w", err)
		}
		pipClient, err := armnetwork.NewPublicIPAddressesClient(subscriptionID, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create public IP client: %w", err)
		}
		lbClient, err := armnetwork.NewLoadBalancersClient(subscriptionID, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create load balancer client: %w", err)
		}
		accountsClient, err := armstorage.NewAccountsClient(subscriptionID, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create storage accounts client: %w", err)
		}
		return NewExecutor(
			&resourceGateway{client: resClient},
			&networkGateway{publicIPs: pipClient, loadBalancers: lbClient},
			&storageGateway{accounts: accountsClient},
		), nil
	}
}

type resourceGateway struct {
	client *armresources.Client
}

func (g *resourceGateway) DeleteByID(ctx context.Context, resourceID string) error {
	poller, err := g.client.BeginDeleteByID(ctx, resourceID, deleteAPIVersion, nil)
	if err != nil {
		return err
	}
	_, err = poller.PollUntilDone(ctx, nil)
	return err
}

type networkGateway struct {
	publicIPs     *armnetwork.PublicIPAddressesClient
	loadBalancers *armnetwork.LoadBalancersClient
}

func (g *networkGateway) GetPublicIP(ctx context.Context, resourceGroup, name string) (*PublicIPState, error) {
	resp, err := g.publicIPs.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return nil, err
	}

	state := &PublicIPState{}
	if resp.SKU != nil {
		if resp.SKU.Name != nil {
			state.SKUName = string(*resp.SKU.Name)
		}
		if resp.SKU.Tier != nil {
			state.SKUTier = string(*resp.SKU.Tier)
		}
	}
	if resp.Properties != nil && resp.Properties.IPConfiguration != nil && resp.Properties.IPConfiguration.ID != nil {
		state.AttachedTo = *resp.Properties.IPConfiguration.ID
	}
	return state, nil
}

func (g *networkGateway) UpgradePublicIPSKU(ctx context.Context, resourceGroup, name string) error {
	current, err := g.publicIPs.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return err
	}

	updated := current.PublicIPAddress
	updated.SKU = &armnetwork.PublicIPAddressSKU{
		Name: to.Ptr(armnetwork.PublicIPAddressSKUNameStandard),
		Tier: to.Ptr(armnetwork.PublicIPAddressSKUTierRegional),
	}
	if updated.Properties == nil {
		updated.Properties = &armnetwork.PublicIPAddressPropertiesFormat{}
	}
	// Standard SKU requires static allocation.
	updated.Properties.PublicIPAllocationMethod = to.Ptr(armnetwork.IPAllocationMethodStatic)

	poller, err := g.publicIPs.BeginCreateOrUpdate(ctx, resourceGroup, name, updated, nil)
	if err != nil {
		return err
	}
	_, err = poller.PollUntilDone(ctx, nil)
	return err
}

func (g *networkGateway) GetLoadBalancer(ctx context.Context, resourceGroup, name string) (*LoadBalancerState, error) {
	resp, err := g.loadBalancers.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return nil, err
	}

	state := &LoadBalancerState{}
	if resp.SKU != nil && resp.SKU.Name != nil {
		state.SKUName = string(*resp.SKU.Name)
	}
	if resp.Properties != nil {
		for _, frontend := range resp.Properties.FrontendIPConfigurations {
			if frontend.Properties != nil &&
				frontend.Properties.PublicIPAddress != nil &&
				frontend.Properties.PublicIPAddress.ID != nil {
				state.FrontendPublicIPs = append(state.FrontendPublicIPs, *frontend.Properties.PublicIPAddress.ID)
			}
		}
	}
	return state, nil
}

func (g *networkGateway) UpgradeLoadBalancerSKU(ctx context.Context, resourceGroup, name string) error {
	current, err := g.loadBalancers.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return err
	}

	// Resubmitting the full resource with the new SKU preserves frontend
	// configurations, backend pools, rules and probes.
	updated := current.LoadBalancer
	updated.SKU = &armnetwork.LoadBalancerSKU{
		Name: to.Ptr(armnetwork.LoadBalancerSKUNameStandard),
		Tier: to.Ptr(armnetwork.LoadBalancerSKUTierRegional),
	}

	poller, err := g.loadBalancers.BeginCreateOrUpdate(ctx, resourceGroup, name, updated, nil)
	if err != nil {
		return err
	}
	_, err = poller.PollUntilDone(ctx, nil)
	return err
}

type storageGateway struct {
	accounts *armstorage.AccountsClient
}

func (g *storageGateway) GetStorageAccount(ctx context.Context, resourceGroup, name string) (*StorageAccountState, error) {
	resp, err := g.accounts.GetProperties(ctx, resourceGroup, name, nil)
	if err != nil {
		return nil, err
	}

	state := &StorageAccountState{}
	if resp.SKU != nil && resp.SKU.Name != nil {
		state.SKUName = string(*resp.SKU.Name)
	}
	if resp.Kind != nil {
		state.Kind = string(*resp.Kind)
	}
	if resp.Location != nil {
		state.Location = *resp.Location
	}
	if resp.Properties != nil && resp.Properties.AccessTier != nil {
		state.AccessTier = string(*resp.Properties.AccessTier)
	}
	return state, nil
}

func (g *storageGateway) UpdateStorageAccountSKU(ctx context.Context, resourceGroup, name, sku string) error {
	_, err := g.accounts.Update(ctx, resourceGroup, name, armstorage.AccountUpdateParameters{
		SKU: &armstorage.SKU{Name: to.Ptr(armstorage.SKUName(sku))},
	}, nil)
	return err
}
