package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/adapters"
	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	actionstore "github.com/de-tools/tenant-optimizer/pkg/store/duckdb/action"
	"github.com/google/uuid"
)

// Service owns the action state machine:
//
//	proposed -> approved -> executing -> succeeded | failed | manual-required
//	proposed -> rejected
//
// Every transition is a check-and-set against the store, so concurrent
// approvals of the same action have exactly one winner. Transitions are
// persisted before any provider call is made on their behalf.
type Service interface {
	RecordFinding(ctx context.Context, principal domain.Principal, finding domain.Finding) (*domain.Action, error)
	Approve(ctx context.Context, principal domain.Principal, actionID, approver string) (*domain.Action, error)
	Reject(ctx context.Context, principal domain.Principal, actionID, approver string) (*domain.Action, error)
	MarkExecuting(ctx context.Context, principal domain.Principal, actionID string) (*domain.Action, error)
	// ReleaseExecution hands an executing action back to approved. Used when
	// the provider rejected the caller's credentials before any work was done,
	// so the action stays retryable once consent is obtained.
	ReleaseExecution(ctx context.Context, principal domain.Principal, actionID string) (*domain.Action, error)
	RecordOutcome(ctx context.Context, principal domain.Principal, actionID string, outcome domain.Outcome) (*domain.Action, error)
	Get(ctx context.Context, principal domain.Principal, actionID string) (*domain.Action, error)
	FindByResource(ctx context.Context, principal domain.Principal, resourceID string, kind domain.ActionKind) (*domain.Action, error)
	List(ctx context.Context, principal domain.Principal, statuses []domain.ActionStatus) ([]*domain.Action, error)
}

type service struct {
	store actionstore.Store
	now   func() time.Time

	// Serializes the find-then-insert in RecordFinding. The embedded database
	// cannot express a uniqueness guard over open actions only, and this
	// process is its only writer.
	findingMu sync.Mutex
}

func NewService(store actionstore.Store) Service {
	return &service{
		store: store,
		now:   time.Now,
	}
}

// RecordFinding upserts a proposed action for the finding's resource. It is
// idempotent: while an action for the same resource and kind is still open,
// the existing one is returned instead of a duplicate. A new action is only
// created once the previous one reached a terminal state.
func (s *service) RecordFinding(ctx context.Context, principal domain.Principal, finding domain.Finding) (*domain.Action, error) {
	s.findingMu.Lock()
	defer s.findingMu.Unlock()

	kind := kindFor(finding.Category)

	existing, err := s.store.FindByResource(ctx, principal.TenantID, finding.Resource.ID, string(kind))
	if err != nil && !errors.Is(err, actionstore.ErrNotFound) {
		return nil, fmt.Errorf("lookup existing action: %w", err)
	}
	if existing != nil && !domain.ActionStatus(existing.Status).Terminal() {
		return adapters.MapStoreActionToDomain(existing), nil
	}

	act := &domain.Action{
		ID:               uuid.NewString(),
		TenantID:         principal.TenantID,
		SubscriptionID:   finding.Resource.SubscriptionID,
		ResourceID:       finding.Resource.ID,
		ResourceName:     finding.Resource.Name,
		ResourceType:     finding.Resource.Type,
		Kind:             kind,
		UpgradeType:      finding.UpgradeType,
		Risk:             finding.Risk,
		Status:           domain.StatusProposed,
		Analysis:         finding.Analysis,
		Recommendation:   finding.Recommendation,
		EstimatedSavings: finding.EstimatedMonthlyCost,
		CreatedAt:        s.now().UTC(),
	}
	act.UpdatedAt = act.CreatedAt

	if err := s.store.Create(ctx, adapters.MapDomainActionToStore(act)); err != nil {
		return nil, fmt.Errorf("record finding: %w", err)
	}
	return act, nil
}

func (s *service) Approve(ctx context.Context, principal domain.Principal, actionID, approver string) (*domain.Action, error) {
	approvedAt := s.now().UTC()
	return s.transition(ctx, principal, actionID, domain.StatusProposed, domain.StatusApproved, actionstore.Update{
		ApprovedBy: &approver,
		ApprovedAt: &approvedAt,
	})
}

func (s *service) Reject(ctx context.Context, principal domain.Principal, actionID, approver string) (*domain.Action, error) {
	rejectedAt := s.now().UTC()
	return s.transition(ctx, principal, actionID, domain.StatusProposed, domain.StatusRejected, actionstore.Update{
		ApprovedBy: &approver,
		ApprovedAt: &rejectedAt,
	})
}

func (s *service) MarkExecuting(ctx context.Context, principal domain.Principal, actionID string) (*domain.Action, error) {
	return s.transition(ctx, principal, actionID, domain.StatusApproved, domain.StatusExecuting, actionstore.Update{})
}

func (s *service) ReleaseExecution(ctx context.Context, principal domain.Principal, actionID string) (*domain.Action, error) {
	return s.transition(ctx, principal, actionID, domain.StatusExecuting, domain.StatusApproved, actionstore.Update{})
}

func (s *service) RecordOutcome(ctx context.Context, principal domain.Principal, actionID string, outcome domain.Outcome) (*domain.Action, error) {
	if !outcome.Status.Terminal() {
		return nil, fmt.Errorf("outcome status %s is not terminal", outcome.Status)
	}
	return s.transition(ctx, principal, actionID, domain.StatusExecuting, outcome.Status, actionstore.Update{
		Detail: &outcome.Detail,
	})
}

func (s *service) Get(ctx context.Context, principal domain.Principal, actionID string) (*domain.Action, error) {
	rec, err := s.store.Get(ctx, principal.TenantID, actionID)
	if errors.Is(err, actionstore.ErrNotFound) {
		return nil, domain.ErrActionNotFound
	}
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreActionToDomain(rec), nil
}

func (s *service) FindByResource(ctx context.Context, principal domain.Principal, resourceID string, kind domain.ActionKind) (*domain.Action, error) {
	rec, err := s.store.FindByResource(ctx, principal.TenantID, resourceID, string(kind))
	if errors.Is(err, actionstore.ErrNotFound) {
		return nil, domain.ErrActionNotFound
	}
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreActionToDomain(rec), nil
}

func (s *service) List(ctx context.Context, principal domain.Principal, statuses []domain.ActionStatus) ([]*domain.Action, error) {
	filter := make([]string, len(statuses))
	for i, st := range statuses {
		filter[i] = string(st)
	}
	records, err := s.store.List(ctx, principal.TenantID, filter)
	if err != nil {
		return nil, err
	}
	actions := make([]*domain.Action, len(records))
	for i, rec := range records {
		actions[i] = adapters.MapStoreActionToDomain(rec)
	}
	return actions, nil
}

func (s *service) transition(
	ctx context.Context,
	principal domain.Principal,
	actionID string,
	from, to domain.ActionStatus,
	update actionstore.Update,
) (*domain.Action, error) {
	won, err := s.store.Transition(ctx, principal.TenantID, actionID, string(from), string(to), update)
	if err != nil {
		return nil, err
	}
	if !won {
		// Either the action is missing or someone else moved it first; read
		// back to tell the caller which.
		rec, getErr := s.store.Get(ctx, principal.TenantID, actionID)
		if errors.Is(getErr, actionstore.ErrNotFound) {
			return nil, domain.ErrActionNotFound
		}
		if getErr != nil {
			return nil, getErr
		}
		return nil, &domain.InvalidTransitionError{
			ActionID:  actionID,
			Current:   domain.ActionStatus(rec.Status),
			Attempted: to,
		}
	}
	return s.Get(ctx, principal, actionID)
}

func kindFor(category domain.Category) domain.ActionKind {
	if category == domain.CategoryOrphaned {
		return domain.ActionKindDelete
	}
	return domain.ActionKindUpgrade
}
