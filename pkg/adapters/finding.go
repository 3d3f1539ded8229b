package adapters

import (
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/models/api"
	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
)

func MapFindingDomainToApi(f domain.Finding, actionID string) api.Finding {
	out := api.Finding{
		ResourceID:           f.Resource.ID,
		Name:                 f.Resource.Name,
		Type:                 string(f.Resource.Type),
		ResourceGroup:        f.Resource.ResourceGroup,
		Location:             f.Resource.Location,
		SubscriptionID:       f.Resource.SubscriptionID,
		Category:             string(f.Category),
		Analysis:             f.Analysis,
		Recommendation:       f.Recommendation,
		Priority:             string(f.Priority),
		EstimatedMonthlyCost: f.EstimatedMonthlyCost,
		MigrationComplexity:  string(f.MigrationComplexity),
		UpgradeType:          f.UpgradeType,
		ActionID:             actionID,
	}
	if f.RetirementDate != nil {
		out.RetirementDate = f.RetirementDate.Format(time.DateOnly)
	}
	return out
}
