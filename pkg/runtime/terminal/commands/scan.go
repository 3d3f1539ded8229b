package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/runtime/terminal/export"
	"github.com/de-tools/tenant-optimizer/pkg/services/azure"
	"github.com/de-tools/tenant-optimizer/pkg/services/classify"
	"github.com/de-tools/tenant-optimizer/pkg/services/inventory"
	"github.com/spf13/cobra"
)

type ScanCmd struct {
	profile       string
	category      string
	subscriptions []string
	explorers     inventory.ExplorerFactory
	engine        *classify.Engine
	reporter      *export.Reporter
}

// NewScanCmd scans the developer's own subscriptions using the Azure CLI
// credential from the local profile. It only reports; nothing is mutated and
// no actions are recorded.
func NewScanCmd(explorers inventory.ExplorerFactory, engine *classify.Engine, reporter *export.Reporter) *cobra.Command {
	sc := &ScanCmd{explorers: explorers, engine: engine, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan subscriptions for orphaned and deprecated resources",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.profile, "profile", azure.DefaultProfile, "Profile name in ~/.azure/config")
	cmd.Flags().StringVar(&sc.category, "category", "all", "Findings to report: orphaned, deprecated or all")
	cmd.Flags().StringSliceVar(&sc.subscriptions, "subscription", nil,
		"Subscription id to scan; repeatable. Defaults to the profile's subscription")

	return cmd
}

func (sc *ScanCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 120*time.Second)
	defer cancel()

	cfg, err := azure.LoadConfig(sc.profile)
	if err != nil {
		return fmt.Errorf("failed to load profile %q: %w", sc.profile, err)
	}

	subscriptions := sc.subscriptions
	if len(subscriptions) == 0 {
		subscriptions = []string{cfg.SubscriptionID}
	}

	explorer, err := sc.explorers(cfg.TokenCredential())
	if err != nil {
		return fmt.Errorf("failed to build explorer: %w", err)
	}

	resources, err := explorer.ListResources(ctx, subscriptions, nil)
	if err != nil {
		var partial *inventory.PartialError
		if !errors.As(err, &partial) {
			return fmt.Errorf("scan failed: %w", err)
		}
		for _, f := range partial.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: subscription %s unreachable: %v\n", f.SubscriptionID, f.Err)
		}
	}

	result := sc.engine.Classify(ctx, resources)

	switch sc.category {
	case "orphaned":
		return sc.reporter.Handle("Orphaned Resources", subscriptions, result.Orphaned)
	case "deprecated":
		return sc.reporter.Handle("Deprecated Resources", subscriptions, result.Deprecated)
	case "all":
		if err := sc.reporter.Handle("Orphaned Resources", subscriptions, result.Orphaned); err != nil {
			return err
		}
		return sc.reporter.Handle("Deprecated Resources", subscriptions, result.Deprecated)
	default:
		return fmt.Errorf("unknown category %q; expected orphaned, deprecated or all", sc.category)
	}
}

