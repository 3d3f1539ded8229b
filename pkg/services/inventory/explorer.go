package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/de-tools/tenant-optimizer/pkg/services/azure"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

// GraphGateway is the thin seam over the Resource Graph API. The default
// implementation lives in gateway.go; tests swap in a fake.
type GraphGateway interface {
	Query(ctx context.Context, subscriptions []string, query string) ([]map[string]any, error)
}

// SubscriptionGateway lists the subscriptions visible to the credential.
type SubscriptionGateway interface {
	List(ctx context.Context) ([]domain.Subscription, error)
}

// Explorer queries the live cloud environment. Read-only; nothing here may
// ever mutate a resource.
type Explorer interface {
	ListSubscriptions(ctx context.Context) ([]domain.Subscription, error)
	ListResources(ctx context.Context, subscriptionIDs []string, types []domain.ResourceType) ([]domain.Resource, error)
}

// SubscriptionFailure records one subscription that could not be scanned.
type SubscriptionFailure struct {
	SubscriptionID string
	Err            error
}

// PartialError is returned when some, but not all, subscriptions failed.
// Resources holds everything that was fetched; callers decide whether a
// partial inventory is good enough.
type PartialError struct {
	Resources []domain.Resource
	Failed    []SubscriptionFailure
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("inventory incomplete: %d subscription(s) unreachable", len(e.Failed))
}

type Config struct {
	// FanOutLimit bounds how many subscriptions are queried concurrently, to
	// stay under the Resource Graph throttling quota.
	FanOutLimit int
	// MaxAttempts bounds retries per subscription for transient failures.
	MaxAttempts uint64
	BaseBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.FanOutLimit <= 0 {
		c.FanOutLimit = 4
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 500 * time.Millisecond
	}
	return c
}

type explorer struct {
	graph GraphGateway
	subs  SubscriptionGateway
	cfg   Config
}

func NewExplorer(graph GraphGateway, subs SubscriptionGateway, cfg Config) Explorer {
	return &explorer{
		graph: graph,
		subs:  subs,
		cfg:   cfg.withDefaults(),
	}
}

func (e *explorer) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	subscriptions, err := e.subs.List(ctx)
	if err != nil {
		return nil, azure.MapResponseError(err)
	}
	return subscriptions, nil
}

func (e *explorer) ListResources(
	ctx context.Context,
	subscriptionIDs []string,
	types []domain.ResourceType,
) ([]domain.Resource, error) {
	if len(subscriptionIDs) == 0 {
		return nil, &domain.PermanentError{
			Err:    fmt.Errorf("at least one subscription id is required"),
			Detail: "EmptySubscriptionList",
		}
	}

	query := buildQuery(types)

	var (
		mu       sync.Mutex
		bySub    = make(map[string][]domain.Resource, len(subscriptionIDs))
		failures []SubscriptionFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.FanOutLimit)

	for _, subID := range subscriptionIDs {
		g.Go(func() error {
			resources, err := e.querySubscription(gctx, subID, query)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				err = azure.MapResponseError(err)
				// Auth failures on any listed subscription fail the whole
				// call; the caller's token is wrong, not the provider.
				if err == domain.ErrUnauthorized || err == domain.ErrForbidden {
					return err
				}
				failures = append(failures, SubscriptionFailure{SubscriptionID: subID, Err: err})
				return nil
			}
			bySub[subID] = resources
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stitch results back in the order subscriptions were requested so the
	// discovery order stays stable across scans.
	resources := make([]domain.Resource, 0)
	for _, subID := range subscriptionIDs {
		resources = append(resources, bySub[subID]...)
	}

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			return failures[i].SubscriptionID < failures[j].SubscriptionID
		})
		return resources, &PartialError{Resources: resources, Failed: failures}
	}

	return resources, nil
}

func (e *explorer) querySubscription(ctx context.Context, subID, query string) ([]domain.Resource, error) {
	logger := zerolog.Ctx(ctx)

	var rows []map[string]any
	backoff := retry.WithMaxRetries(e.cfg.MaxAttempts-1, retry.NewExponential(e.cfg.BaseBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var qerr error
		rows, qerr = e.graph.Query(ctx, []string{subID}, query)
		if qerr == nil {
			return nil
		}
		if azure.IsTransient(qerr) {
			logger.Warn().
				Err(qerr).
				Str("subscription", subID).
				Msg("transient resource graph error, retrying")
			return retry.RetryableError(qerr)
		}
		return qerr
	})
	if err != nil {
		return nil, err
	}

	resources := make([]domain.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, parseResource(row, subID))
	}
	return resources, nil
}
