package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/adapters"
	"github.com/de-tools/tenant-optimizer/pkg/models/api"
	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/de-tools/tenant-optimizer/pkg/server/middleware"
	"github.com/de-tools/tenant-optimizer/pkg/services/approval"
	"github.com/de-tools/tenant-optimizer/pkg/services/azure"
	"github.com/de-tools/tenant-optimizer/pkg/services/classify"
	"github.com/de-tools/tenant-optimizer/pkg/services/cost"
	"github.com/de-tools/tenant-optimizer/pkg/services/inventory"
	"github.com/de-tools/tenant-optimizer/pkg/services/remediation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const defaultCostDays = 30

type Handler struct {
	explorers   inventory.ExplorerFactory
	engine      *classify.Engine
	approvals   approval.Service
	remediation remediation.Service
	costs       cost.Factory
}

func NewHandler(
	explorers inventory.ExplorerFactory,
	engine *classify.Engine,
	approvals approval.Service,
	remediationSvc remediation.Service,
	costs cost.Factory,
) *Handler {
	return &Handler{
		explorers:   explorers,
		engine:      engine,
		approvals:   approvals,
		remediation: remediationSvc,
		costs:       costs,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := middleware.Principal(ctx)
	if !ok {
		respondError(ctx, w, domain.ErrUnauthorized)
		return
	}

	explorer, err := h.explorers(azure.NewStaticTokenCredential(principal.Token))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	subscriptions, err := explorer.ListSubscriptions(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	response := make([]api.Subscription, 0, len(subscriptions))
	for _, sub := range subscriptions {
		response = append(response, api.Subscription{
			ID:          sub.ID,
			DisplayName: sub.DisplayName,
			State:       sub.State,
		})
	}
	respondJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) ScanOrphaned(w http.ResponseWriter, r *http.Request) {
	h.scan(w, r, domain.CategoryOrphaned)
}

func (h *Handler) ScanDeprecated(w http.ResponseWriter, r *http.Request) {
	h.scan(w, r, domain.CategoryDeprecated)
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request, category domain.Category) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	principal, ok := middleware.Principal(ctx)
	if !ok {
		respondError(ctx, w, domain.ErrUnauthorized)
		return
	}

	var req api.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, api.Error{Kind: "BadRequest", Detail: "invalid request body"})
		return
	}
	if len(req.Subscriptions) == 0 {
		respondJSON(ctx, w, http.StatusBadRequest, api.Error{Kind: "BadRequest", Detail: "at least one subscription id is required"})
		return
	}

	explorer, err := h.explorers(azure.NewStaticTokenCredential(principal.Token))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	resources, err := explorer.ListResources(ctx, req.Subscriptions, nil)

	var failed []string
	if err != nil {
		var partial *inventory.PartialError
		if !errors.As(err, &partial) {
			respondError(ctx, w, err)
			return
		}
		for _, f := range partial.Failed {
			failed = append(failed, f.SubscriptionID)
		}
		if len(failed) == len(req.Subscriptions) {
			respondJSON(ctx, w, http.StatusBadGateway, api.Error{
				Kind:       "ProviderTransientError",
				Detail:     "no subscription could be scanned; retry shortly",
				RetryAfter: 30,
			})
			return
		}
		logger.Warn().
			Strs("failed_subscriptions", failed).
			Msg("scan degraded to partial inventory")
	}

	result := h.engine.Classify(ctx, resources)
	findings := result.Orphaned
	if category == domain.CategoryDeprecated {
		findings = result.Deprecated
	}

	response := api.ScanResponse{
		Resources:           make([]api.Finding, 0, len(findings)),
		FailedSubscriptions: failed,
		ScanTimestamp:       time.Now().UTC().Format(time.RFC3339),
	}
	for _, finding := range findings {
		act, err := h.approvals.RecordFinding(ctx, principal, finding)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		response.Resources = append(response.Resources, adapters.MapFindingDomainToApi(finding, act.ID))
	}
	response.TotalResources = len(response.Resources)

	respondJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) DeleteOrphaned(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := middleware.Principal(ctx)
	if !ok {
		respondError(ctx, w, domain.ErrUnauthorized)
		return
	}

	var req api.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResourceID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, api.Error{Kind: "BadRequest", Detail: "resourceId is required"})
		return
	}

	act, outcome, err := h.remediation.Delete(ctx, principal, req.ResourceID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, adapters.MapOutcomeDomainToApi(act.ID, act.ResourceID, outcome))
}

func (h *Handler) UpgradeDeprecated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := middleware.Principal(ctx)
	if !ok {
		respondError(ctx, w, domain.ErrUnauthorized)
		return
	}

	var req api.UpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResourceID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, api.Error{Kind: "BadRequest", Detail: "resourceId is required"})
		return
	}

	act, outcome, err := h.remediation.Upgrade(ctx, principal, req.ResourceID, req.UpgradeType)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, adapters.MapOutcomeDomainToApi(act.ID, act.ResourceID, outcome))
}

func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := middleware.Principal(ctx)
	if !ok {
		respondError(ctx, w, domain.ErrUnauthorized)
		return
	}

	var statuses []domain.ActionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		statuses = append(statuses, domain.ActionStatus(raw))
	}

	actions, err := h.approvals.List(ctx, principal, statuses)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	response := make([]api.Action, 0, len(actions))
	for _, act := range actions {
		response = append(response, adapters.MapActionDomainToApi(act))
	}
	respondJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) SubscriptionCost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := middleware.Principal(ctx)
	if !ok {
		respondError(ctx, w, domain.ErrUnauthorized)
		return
	}

	subscriptionID := chi.URLParam(r, "subscription")
	days := defaultCostDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSON(ctx, w, http.StatusBadRequest, api.Error{Kind: "BadRequest", Detail: "days must be a positive integer"})
			return
		}
		days = parsed
	}

	costExplorer, err := h.costs(azure.NewStaticTokenCredential(principal.Token))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	spend, err := costExplorer.SubscriptionSpend(ctx, subscriptionID, days)
	if err != nil {
		respondError(ctx, w, azure.MapResponseError(err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, api.SubscriptionCost{
		SubscriptionID: spend.SubscriptionID,
		Days:           spend.Days,
		TotalCost:      spend.Total,
		Currency:       spend.Currency,
	})
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
