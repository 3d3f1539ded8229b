package cost

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
)

// Explorer reports actual spend from the cost management API. Read-only.
type Explorer interface {
	SubscriptionSpend(ctx context.Context, subscriptionID string, days int) (*domain.SubscriptionSpend, error)
}

// Factory builds an Explorer bound to one credential.
type Factory func(cred azcore.TokenCredential) (Explorer, error)

func NewARMExplorerFactory() Factory {
	return func(cred azcore.TokenCredential) (Explorer, error) {
		clientFactory, err := armcostmanagement.NewClientFactory(cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create cost management client factory: %w", err)
		}
		return &explorer{costFactory: clientFactory}, nil
	}
}

type explorer struct {
	costFactory *armcostmanagement.ClientFactory
}

func (e *explorer) SubscriptionSpend(ctx context.Context, subscriptionID string, days int) (*domain.SubscriptionSpend, error) {
	client := e.costFactory.NewQueryClient()
	scope := fmt.Sprintf("/subscriptions/%s", subscriptionID)

	timeTo := time.Now()
	timeFrom := timeTo.AddDate(0, 0, -days)

	exportType := armcostmanagement.ExportTypeActualCost
	granularity := armcostmanagement.GranularityTypeDaily
	timeframe := armcostmanagement.TimeframeTypeCustom
	sum := armcostmanagement.FunctionTypeSum

	params := armcostmanagement.QueryDefinition{
		Type:      &exportType,
		Timeframe: &timeframe,
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &timeFrom,
			To:   &timeTo,
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: &granularity,
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("Cost"),
					Function: &sum,
				},
			},
		},
	}

	resp, err := client.Usage(ctx, scope, params, nil)
	if err != nil {
		return nil, fmt.Errorf("query subscription spend: %w", err)
	}

	spend := &domain.SubscriptionSpend{
		SubscriptionID: subscriptionID,
		Days:           days,
	}

	if resp.Properties == nil {
		return spend, nil
	}

	costIdx, currencyIdx := -1, -1
	for i, col := range resp.Properties.Columns {
		if col == nil || col.Name == nil {
			continue
		}
		switch *col.Name {
		case "Cost":
			costIdx = i
		case "Currency":
			currencyIdx = i
		}
	}

	for _, row := range resp.Properties.Rows {
		if costIdx >= 0 && costIdx < len(row) {
			if v, ok := row[costIdx].(float64); ok {
				spend.Total += v
			}
		}
		if currencyIdx >= 0 && currencyIdx < len(row) && spend.Currency == "" {
			if c, ok := row[currencyIdx].(string); ok {
				spend.Currency = c
			}
		}
	}

	return spend, nil
}
