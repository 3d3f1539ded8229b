package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/de-tools/tenant-optimizer/pkg/services/azure"
	"github.com/rs/zerolog"
)

// ResourceGateway deletes arbitrary resources through the management API.
type ResourceGateway interface {
	DeleteByID(ctx context.Context, resourceID string) error
}

// PublicIPState is the slice of public IP configuration the upgrade
// preconditions need.
type PublicIPState struct {
	SKUName    string
	SKUTier    string
	AttachedTo string // id of the attached IP configuration, empty if detached
}

// LoadBalancerState is the slice of load balancer configuration the upgrade
// preconditions need.
type LoadBalancerState struct {
	SKUName           string
	FrontendPublicIPs []string // ids of public IPs referenced by frontend configurations
}

// NetworkGateway inspects and upgrades network resources.
type NetworkGateway interface {
	GetPublicIP(ctx context.Context, resourceGroup, name string) (*PublicIPState, error)
	UpgradePublicIPSKU(ctx context.Context, resourceGroup, name string) error
	GetLoadBalancer(ctx context.Context, resourceGroup, name string) (*LoadBalancerState, error)
	// UpgradeLoadBalancerSKU moves a Basic load balancer to Standard in place,
	// preserving frontend configurations, backend pools, rules and probes.
	UpgradeLoadBalancerSKU(ctx context.Context, resourceGroup, name string) error
}

// StorageAccountState is the configuration slice the storage upgrade needs.
type StorageAccountState struct {
	SKUName    string
	Kind       string
	AccessTier string
	Location   string
}

// StorageGateway inspects and updates storage accounts.
type StorageGateway interface {
	GetStorageAccount(ctx context.Context, resourceGroup, name string) (*StorageAccountState, error)
	UpdateStorageAccountSKU(ctx context.Context, resourceGroup, name, sku string) error
}

// Executor performs one approved remediation against customer infrastructure.
// This is the only component with provider side effects; it must only ever be
// invoked by the remediation service with an action that passed the approval
// state machine.
type Executor interface {
	Execute(ctx context.Context, action *domain.Action) (domain.Outcome, error)
}

type executor struct {
	resources ResourceGateway
	network   NetworkGateway
	storage   StorageGateway
}

func NewExecutor(resources ResourceGateway, network NetworkGateway, storage StorageGateway) Executor {
	return &executor{
		resources: resources,
		network:   network,
		storage:   storage,
	}
}

// Execute runs the action's remediation. Re-invoking with an action that
// already reached a terminal state reports the stored outcome without a
// second provider call.
func (e *executor) Execute(ctx context.Context, action *domain.Action) (domain.Outcome, error) {
	if action.Status.Terminal() {
		return domain.Outcome{Status: action.Status, Detail: action.Detail}, nil
	}

	switch action.Kind {
	case domain.ActionKindDelete:
		return e.delete(ctx, action)
	case domain.ActionKindUpgrade:
		return e.upgrade(ctx, action)
	default:
		return domain.Outcome{}, fmt.Errorf("unsupported action kind: %s", action.Kind)
	}
}

func (e *executor) delete(ctx context.Context, action *domain.Action) (domain.Outcome, error) {
	logger := zerolog.Ctx(ctx)

	if err := e.resources.DeleteByID(ctx, action.ResourceID); err != nil {
		mapped := azure.MapResponseError(err)
		if errors.Is(mapped, domain.ErrUnauthorized) || errors.Is(mapped, domain.ErrForbidden) {
			return domain.Outcome{}, mapped
		}
		logger.Error().
			Err(err).
			Str("resource", action.ResourceID).
			Msg("delete failed")
		return domain.Outcome{
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("delete failed: %v", mapped),
		}, nil
	}

	logger.Info().Str("resource", action.ResourceID).Msg("resource deleted")
	return domain.Outcome{
		Status: domain.StatusSucceeded,
		Detail: "resource deleted",
	}, nil
}

func (e *executor) upgrade(ctx context.Context, action *domain.Action) (domain.Outcome, error) {
	switch action.UpgradeType {
	case "public_ip":
		return e.upgradePublicIP(ctx, action)
	case "load_balancer":
		return e.upgradeLoadBalancer(ctx, action)
	case "storage_account":
		return e.upgradeStorageAccount(ctx, action)
	default:
		// VM resizes and unknown upgrade types get a guided manual
		// remediation.
		return domain.Outcome{
			Status:      domain.StatusManualRequired,
			Detail:      fmt.Sprintf("no automated upgrade path for %s; manual steps provided", action.ResourceType),
			ManualSteps: genericManualSteps(),
			PortalURL:   PortalURL(action.ResourceID),
		}, nil
	}
}

func (e *executor) upgradePublicIP(ctx context.Context, action *domain.Action) (domain.Outcome, error) {
	logger := zerolog.Ctx(ctx)

	rid, err := ParseResourceID(action.ResourceID)
	if err != nil {
		return domain.Outcome{}, &domain.PermanentError{Err: err, Detail: "InvalidResourceID"}
	}

	state, err := e.network.GetPublicIP(ctx, rid.ResourceGroup, rid.Name)
	if err != nil {
		mapped := azure.MapResponseError(err)
		if errors.Is(mapped, domain.ErrUnauthorized) || errors.Is(mapped, domain.ErrForbidden) {
			return domain.Outcome{}, mapped
		}
		return domain.Outcome{
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("could not inspect public IP: %v", mapped),
		}, nil
	}

	if strings.EqualFold(state.SKUName, "Standard") {
		return domain.Outcome{
			Status: domain.StatusSucceeded,
			Detail: "public IP is already Standard SKU",
		}, nil
	}

	// An attached Basic IP cannot be upgraded in place; detaching it is a
	// destructive workaround we never attempt automatically.
	if state.AttachedTo != "" {
		logger.Info().
			Str("resource", action.ResourceID).
			Str("attached_to", state.AttachedTo).
			Msg("public IP attached, manual upgrade required")
		return domain.Outcome{
			Status:      domain.StatusManualRequired,
			Detail:      "public IP is attached to another resource; in-place SKU upgrade is blocked",
			ManualSteps: publicIPManualSteps(rid.Name),
			Warnings:    publicIPManualWarnings(),
			PortalURL:   PortalURL(action.ResourceID),
		}, nil
	}

	if err := e.network.UpgradePublicIPSKU(ctx, rid.ResourceGroup, rid.Name); err != nil {
		mapped := azure.MapResponseError(err)
		if errors.Is(mapped, domain.ErrUnauthorized) || errors.Is(mapped, domain.ErrForbidden) {
			return domain.Outcome{}, mapped
		}
		logger.Error().
			Err(err).
			Str("resource", action.ResourceID).
			Msg("public IP SKU upgrade failed")
		return domain.Outcome{
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("SKU upgrade failed: %v", mapped),
		}, nil
	}

	logger.Info().Str("resource", action.ResourceID).Msg("public IP upgraded to Standard SKU")
	return domain.Outcome{
		Status: domain.StatusSucceeded,
		Detail: "public IP upgraded from Basic to Standard SKU",
	}, nil
}

func (e *executor) upgradeLoadBalancer(ctx context.Context, action *domain.Action) (domain.Outcome, error) {
	logger := zerolog.Ctx(ctx)

	rid, err := ParseResourceID(action.ResourceID)
	if err != nil {
		return domain.Outcome{}, &domain.PermanentError{Err: err, Detail: "InvalidResourceID"}
	}

	state, err := e.network.GetLoadBalancer(ctx, rid.ResourceGroup, rid.Name)
	if err != nil {
		mapped := azure.MapResponseError(err)
		if errors.Is(mapped, domain.ErrUnauthorized) || errors.Is(mapped, domain.ErrForbidden) {
			return domain.Outcome{}, mapped
		}
		return domain.Outcome{
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("could not inspect load balancer: %v", mapped),
		}, nil
	}

	if strings.EqualFold(state.SKUName, "Standard") {
		return domain.Outcome{
			Status: domain.StatusSucceeded,
			Detail: "load balancer is already Standard SKU",
		}, nil
	}

	// A frontend configuration holding a Basic public IP blocks the SKU
	// change; those IPs have to be upgraded first.
	var blocking []string
	for _, ipID := range state.FrontendPublicIPs {
		ipRID, err := ParseResourceID(ipID)
		if err != nil {
			logger.Warn().Str("public_ip", ipID).Msg("skipping frontend IP compatibility check, unparseable id")
			continue
		}
		ip, err := e.network.GetPublicIP(ctx, ipRID.ResourceGroup, ipRID.Name)
		if err != nil {
			mapped := azure.MapResponseError(err)
			if errors.Is(mapped, domain.ErrUnauthorized) || errors.Is(mapped, domain.ErrForbidden) {
				return domain.Outcome{}, mapped
			}
			logger.Warn().Err(err).Str("public_ip", ipRID.Name).Msg("could not check frontend IP compatibility")
			continue
		}
		if strings.EqualFold(ip.SKUName, "Basic") {
			blocking = append(blocking, ipRID.Name)
		}
	}
	if len(blocking) > 0 {
		logger.Info().
			Str("resource", action.ResourceID).
			Strs("blocking_ips", blocking).
			Msg("load balancer upgrade blocked by Basic frontend IPs")
		return domain.Outcome{
			Status:      domain.StatusManualRequired,
			Detail:      fmt.Sprintf("frontend public IPs must be upgraded to Standard SKU first: %s", strings.Join(blocking, ", ")),
			ManualSteps: loadBalancerManualSteps(blocking),
			Warnings:    loadBalancerManualWarnings(),
			PortalURL:   PortalURL(action.ResourceID),
		}, nil
	}

	if err := e.network.UpgradeLoadBalancerSKU(ctx, rid.ResourceGroup, rid.Name); err != nil {
		mapped := azure.MapResponseError(err)
		if errors.Is(mapped, domain.ErrUnauthorized) || errors.Is(mapped, domain.ErrForbidden) {
			return domain.Outcome{}, mapped
		}
		logger.Error().
			Err(err).
			Str("resource", action.ResourceID).
			Msg("load balancer SKU upgrade failed")
		return domain.Outcome{
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("SKU upgrade failed: %v", mapped),
		}, nil
	}

	logger.Info().Str("resource", action.ResourceID).Msg("load balancer upgraded to Standard SKU")
	return domain.Outcome{
		Status: domain.StatusSucceeded,
		Detail: "load balancer upgraded from Basic to Standard SKU",
	}, nil
}

// Regions where zone-redundant storage replication is available.
var zoneRedundantRegions = map[string]bool{
	"eastus":      true,
	"westus2":     true,
	"northeurope": true,
	"westeurope":  true,
}

// storageTargetSKU maps an upgradable replication SKU to its zone-redundant
// counterpart. SKUs without an in-place upgrade return "".
func storageTargetSKU(current string) string {
	switch {
	case strings.EqualFold(current, "Standard_LRS"):
		return "Standard_ZRS"
	case strings.EqualFold(current, "Standard_GRS"):
		return "Standard_GZRS"
	default:
		return ""
	}
}

func (e *executor) upgradeStorageAccount(ctx context.Context, action *domain.Action) (domain.Outcome, error) {
	logger := zerolog.Ctx(ctx)

	rid, err := ParseResourceID(action.ResourceID)
	if err != nil {
		return domain.Outcome{}, &domain.PermanentError{Err: err, Detail: "InvalidResourceID"}
	}

	state, err := e.storage.GetStorageAccount(ctx, rid.ResourceGroup, rid.Name)
	if err != nil {
		mapped := azure.MapResponseError(err)
		if errors.Is(mapped, domain.ErrUnauthorized) || errors.Is(mapped, domain.ErrForbidden) {
			return domain.Outcome{}, mapped
		}
		return domain.Outcome{
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("could not inspect storage account: %v", mapped),
		}, nil
	}

	if strings.EqualFold(state.SKUName, "Standard_ZRS") || strings.EqualFold(state.SKUName, "Standard_GZRS") {
		return domain.Outcome{
			Status: domain.StatusSucceeded,
			Detail: "storage account already uses zone-redundant replication",
		}, nil
	}

	target := storageTargetSKU(state.SKUName)
	if target == "" {
		// Kind and access tier changes need a data migration; never automated.
		return domain.Outcome{
			Status:      domain.StatusManualRequired,
			Detail:      fmt.Sprintf("no in-place SKU upgrade from %s; a data migration is required", state.SKUName),
			ManualSteps: storageAccountManualSteps(rid.Name),
			PortalURL:   PortalURL(action.ResourceID),
		}, nil
	}

	if !zoneRedundantRegions[strings.ToLower(state.Location)] {
		return domain.Outcome{
			Status:      domain.StatusManualRequired,
			Detail:      fmt.Sprintf("region %s does not offer zone-redundant storage; migrate the account to a supported region", state.Location),
			ManualSteps: storageAccountManualSteps(rid.Name),
			PortalURL:   PortalURL(action.ResourceID),
		}, nil
	}

	if err := e.storage.UpdateStorageAccountSKU(ctx, rid.ResourceGroup, rid.Name, target); err != nil {
		mapped := azure.MapResponseError(err)
		if errors.Is(mapped, domain.ErrUnauthorized) || errors.Is(mapped, domain.ErrForbidden) {
			return domain.Outcome{}, mapped
		}
		logger.Error().
			Err(err).
			Str("resource", action.ResourceID).
			Msg("storage account SKU update failed")
		return domain.Outcome{
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("SKU upgrade failed: %v", mapped),
		}, nil
	}

	logger.Info().
		Str("resource", action.ResourceID).
		Str("sku", target).
		Msg("storage account replication upgraded")
	return domain.Outcome{
		Status: domain.StatusSucceeded,
		Detail: fmt.Sprintf("storage account upgraded from %s to %s", state.SKUName, target),
	}, nil
}
