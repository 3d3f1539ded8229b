package remediation

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/de-tools/tenant-optimizer/pkg/services/approval"
	"github.com/de-tools/tenant-optimizer/pkg/services/azure"
	"github.com/de-tools/tenant-optimizer/pkg/services/executor"
	"github.com/rs/zerolog"
)

// Service is the approval-gated remediation workflow. A mutating endpoint
// call is the operator's explicit approval: the service resolves the proposed
// action for the resource, persists the approval, and only then lets the
// executor touch the provider. The executor is not reachable any other way.
type Service interface {
	Delete(ctx context.Context, principal domain.Principal, resourceID string) (*domain.Action, domain.Outcome, error)
	Upgrade(ctx context.Context, principal domain.Principal, resourceID, upgradeType string) (*domain.Action, domain.Outcome, error)
}

type service struct {
	approvals approval.Service
	executors executor.Factory
}

func NewService(approvals approval.Service, executors executor.Factory) Service {
	return &service{
		approvals: approvals,
		executors: executors,
	}
}

func (s *service) Delete(ctx context.Context, principal domain.Principal, resourceID string) (*domain.Action, domain.Outcome, error) {
	return s.remediate(ctx, principal, resourceID, domain.ActionKindDelete, "")
}

func (s *service) Upgrade(ctx context.Context, principal domain.Principal, resourceID, upgradeType string) (*domain.Action, domain.Outcome, error) {
	return s.remediate(ctx, principal, resourceID, domain.ActionKindUpgrade, upgradeType)
}

func (s *service) remediate(
	ctx context.Context,
	principal domain.Principal,
	resourceID string,
	kind domain.ActionKind,
	upgradeType string,
) (*domain.Action, domain.Outcome, error) {
	logger := zerolog.Ctx(ctx)

	act, err := s.approvals.FindByResource(ctx, principal, resourceID, kind)
	if err != nil {
		return nil, domain.Outcome{}, err
	}

	// Replays of finished actions report the stored outcome; no second
	// provider call is ever made.
	if act.Status.Terminal() {
		return act, domain.Outcome{
			Status:    act.Status,
			Detail:    act.Detail,
			PortalURL: executor.PortalURL(act.ResourceID),
		}, nil
	}

	if act.Status == domain.StatusProposed {
		act, err = s.approvals.Approve(ctx, principal, act.ID, principal.Username)
		if err != nil {
			return nil, domain.Outcome{}, err
		}
	}

	if act.Status == domain.StatusApproved {
		act, err = s.approvals.MarkExecuting(ctx, principal, act.ID)
		if err != nil {
			return nil, domain.Outcome{}, err
		}
	}

	if act.Status != domain.StatusExecuting {
		return nil, domain.Outcome{}, &domain.InvalidTransitionError{
			ActionID:  act.ID,
			Current:   act.Status,
			Attempted: domain.StatusExecuting,
		}
	}

	if act.UpgradeType == "" {
		act.UpgradeType = upgradeType
	}

	exec, err := s.executors(azure.NewStaticTokenCredential(principal.Token), act.SubscriptionID)
	if err != nil {
		return nil, domain.Outcome{}, fmt.Errorf("build executor: %w", err)
	}

	outcome, err := exec.Execute(ctx, act)
	if err != nil {
		// A credential rejection happens before the provider does any work;
		// hand the action back to approved so it can be retried once the
		// operator has proper consent.
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrForbidden) {
			if _, releaseErr := s.approvals.ReleaseExecution(ctx, principal, act.ID); releaseErr != nil {
				logger.Error().
					Err(releaseErr).
					Str("action", act.ID).
					Msg("failed to release rejected execution")
			}
			return nil, domain.Outcome{}, err
		}

		// The provider call never completed; record the failure so the
		// action does not stay stuck in executing, then surface the error.
		failed := domain.Outcome{Status: domain.StatusFailed, Detail: err.Error()}
		if _, recordErr := s.approvals.RecordOutcome(ctx, principal, act.ID, failed); recordErr != nil {
			logger.Error().
				Err(recordErr).
				Str("action", act.ID).
				Msg("failed to record execution failure")
		}
		return nil, domain.Outcome{}, err
	}

	act, err = s.approvals.RecordOutcome(ctx, principal, act.ID, outcome)
	if err != nil {
		return nil, domain.Outcome{}, err
	}

	logger.Info().
		Str("action", act.ID).
		Str("resource", act.ResourceID).
		Str("status", string(act.Status)).
		Msg("remediation completed")
	return act, outcome, nil
}
