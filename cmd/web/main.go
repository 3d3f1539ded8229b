package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/tenant-optimizer/pkg/server"
	"github.com/de-tools/tenant-optimizer/pkg/services/approval"
	"github.com/de-tools/tenant-optimizer/pkg/services/classify"
	"github.com/de-tools/tenant-optimizer/pkg/services/config"
	"github.com/de-tools/tenant-optimizer/pkg/services/cost"
	"github.com/de-tools/tenant-optimizer/pkg/services/executor"
	"github.com/de-tools/tenant-optimizer/pkg/services/inventory"
	"github.com/de-tools/tenant-optimizer/pkg/services/remediation"
	"github.com/de-tools/tenant-optimizer/pkg/store/duckdb"
	"github.com/de-tools/tenant-optimizer/pkg/store/duckdb/action"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the tenant optimizer web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to an optional YAML settings file; environment variables take precedence")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: settings.DBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	actionStore, err := action.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create action store: %w", err)
	}

	engineOpts := []classify.Option{}
	if settings.OpenAIAPIKey != "" {
		advisor := classify.NewOpenAIAdvisor(settings.OpenAIAPIKey, settings.OpenAIModel)
		engineOpts = append(engineOpts, classify.WithAdvisor(advisor, settings.AdvisorTimeout))
		logger.Info().Str("model", settings.OpenAIModel).Msg("finding enrichment enabled")
	} else {
		logger.Info().Msg("no OpenAI key configured, findings will be rule-only")
	}

	approvals := approval.NewService(actionStore)
	remediationSvc := remediation.NewService(approvals, executor.NewARMExecutorFactory())

	api := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(settings.ServerHost, settings.ServerPort),
		Dependencies: server.Dependencies{
			Explorers:   inventory.NewARMExplorerFactory(inventory.Config{FanOutLimit: settings.ScanFanOut}),
			Engine:      classify.NewEngine(engineOpts...),
			Approvals:   approvals,
			Remediation: remediationSvc,
			Costs:       cost.NewARMExplorerFactory(),
		},
	})

	return api.Start()
}
