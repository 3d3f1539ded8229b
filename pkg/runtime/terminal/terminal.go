package terminal

import (
	"io"
	"os"

	"github.com/de-tools/tenant-optimizer/pkg/runtime/terminal/commands"
	"github.com/de-tools/tenant-optimizer/pkg/runtime/terminal/export"
	"github.com/de-tools/tenant-optimizer/pkg/services/classify"
	"github.com/de-tools/tenant-optimizer/pkg/services/inventory"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	explorers inventory.ExplorerFactory
	engine    *classify.Engine
	reporter  *export.Reporter
	rootCmd   *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Explorers inventory.ExplorerFactory
	Engine    *classify.Engine
	Output    io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		explorers: opts.Explorers,
		engine:    opts.Engine,
		reporter:  export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimizer",
		Short: "Tenant resource optimizer",
	}

	cmd.AddCommand(commands.NewScanCmd(cli.explorers, cli.engine, cli.reporter))
	cmd.AddCommand(commands.NewResourcesCmd())

	return cmd
}
