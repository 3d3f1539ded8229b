package adapters

import (
	"github.com/de-tools/tenant-optimizer/pkg/models/api"
	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/de-tools/tenant-optimizer/pkg/models/store"
)

func MapStoreActionToDomain(r *store.ActionRecord) *domain.Action {
	if r == nil {
		return nil
	}
	return &domain.Action{
		ID:               r.ID,
		TenantID:         r.TenantID,
		SubscriptionID:   r.SubscriptionID,
		ResourceID:       r.ResourceID,
		ResourceName:     r.ResourceName,
		ResourceType:     domain.ResourceType(r.ResourceType),
		Kind:             domain.ActionKind(r.Kind),
		UpgradeType:      r.UpgradeType,
		Risk:             domain.RiskLevel(r.Risk),
		Status:           domain.ActionStatus(r.Status),
		Analysis:         r.Analysis,
		Recommendation:   r.Recommendation,
		EstimatedSavings: r.EstimatedSavings,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		Detail:           r.Detail,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func MapDomainActionToStore(a *domain.Action) *store.ActionRecord {
	return &store.ActionRecord{
		ID:               a.ID,
		TenantID:         a.TenantID,
		SubscriptionID:   a.SubscriptionID,
		ResourceID:       a.ResourceID,
		ResourceName:     a.ResourceName,
		ResourceType:     string(a.ResourceType),
		Kind:             string(a.Kind),
		UpgradeType:      a.UpgradeType,
		Risk:             string(a.Risk),
		Status:           string(a.Status),
		Analysis:         a.Analysis,
		Recommendation:   a.Recommendation,
		EstimatedSavings: a.EstimatedSavings,
		ApprovedBy:       a.ApprovedBy,
		ApprovedAt:       a.ApprovedAt,
		Detail:           a.Detail,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func MapActionDomainToApi(a *domain.Action) api.Action {
	return api.Action{
		ID:               a.ID,
		SubscriptionID:   a.SubscriptionID,
		ResourceID:       a.ResourceID,
		ResourceName:     a.ResourceName,
		ResourceType:     string(a.ResourceType),
		Kind:             string(a.Kind),
		Risk:             string(a.Risk),
		Status:           string(a.Status),
		Analysis:         a.Analysis,
		Recommendation:   a.Recommendation,
		EstimatedSavings: a.EstimatedSavings,
		ApprovedBy:       a.ApprovedBy,
		ApprovedAt:       a.ApprovedAt,
		Detail:           a.Detail,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func MapOutcomeDomainToApi(actionID, resourceID string, o domain.Outcome) api.ActionResponse {
	resp := api.ActionResponse{
		ActionID:              actionID,
		ResourceID:            resourceID,
		Status:                string(o.Status),
		Detail:                o.Detail,
		ManualUpgradeRequired: o.Status == domain.StatusManualRequired,
		Warnings:              o.Warnings,
		PortalURL:             o.PortalURL,
	}
	for _, s := range o.ManualSteps {
		resp.ManualSteps = append(resp.ManualSteps, api.ManualStep{
			Step:    s.Step,
			Action:  s.Action,
			Details: s.Details,
		})
	}
	return resp
}
