package inventory

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resourcegraph/armresourcegraph"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
)

// ExplorerFactory builds an Explorer bound to one credential. The web layer
// calls it per request with the caller's token credential.
type ExplorerFactory func(cred azcore.TokenCredential) (Explorer, error)

// NewARMExplorerFactory returns the production factory backed by the Resource
// Graph and subscription management APIs.
func NewARMExplorerFactory(cfg Config) ExplorerFactory {
	return func(cred azcore.TokenCredential) (Explorer, error) {
		graphClient, err := armresourcegraph.NewClient(cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create resource graph client: %w", err)
		}
		subsClient, err := armsubscriptions.NewClient(cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create subscriptions client: %w", err)
		}
		return NewExplorer(
			&graphGateway{client: graphClient},
			&subscriptionGateway{client: subsClient},
			cfg,
		), nil
	}
}

type graphGateway struct {
	client *armresourcegraph.Client
}

func (g *graphGateway) Query(ctx context.Context, subscriptions []string, query string) ([]map[string]any, error) {
	subs := make([]*string, len(subscriptions))
	for i := range subscriptions {
		subs[i] = &subscriptions[i]
	}

	var (
		rows      []map[string]any
		skipToken *string
	)
	for {
		resp, err := g.client.Resources(ctx, armresourcegraph.QueryRequest{
			Query:         to.Ptr(query),
			Subscriptions: subs,
			Options: &armresourcegraph.QueryRequestOptions{
				ResultFormat: to.Ptr(armresourcegraph.ResultFormatObjectArray),
				SkipToken:    skipToken,
			},
		}, nil)
		if err != nil {
			return nil, err
		}

		data, ok := resp.Data.([]any)
		if !ok {
			return nil, fmt.Errorf("unexpected resource graph payload type %T", resp.Data)
		}
		for _, item := range data {
			if row, ok := item.(map[string]any); ok {
				rows = append(rows, row)
			}
		}

		if resp.SkipToken == nil || *resp.SkipToken == "" {
			return rows, nil
		}
		skipToken = resp.SkipToken
	}
}

type subscriptionGateway struct {
	client *armsubscriptions.Client
}

func (s *subscriptionGateway) List(ctx context.Context) ([]domain.Subscription, error) {
	var subscriptions []domain.Subscription
	pager := s.client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, sub := range page.Value {
			if sub == nil {
				continue
			}
			entry := domain.Subscription{}
			if sub.SubscriptionID != nil {
				entry.ID = *sub.SubscriptionID
			}
			if sub.DisplayName != nil {
				entry.DisplayName = *sub.DisplayName
			}
			if sub.State != nil {
				entry.State = string(*sub.State)
			}
			subscriptions = append(subscriptions, entry)
		}
	}
	return subscriptions, nil
}
