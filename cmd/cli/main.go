package main

import (
	"fmt"
	"os"

	"github.com/de-tools/tenant-optimizer/pkg/runtime/terminal"
	"github.com/de-tools/tenant-optimizer/pkg/services/classify"
	"github.com/de-tools/tenant-optimizer/pkg/services/inventory"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Explorers: inventory.NewARMExplorerFactory(inventory.Config{}),
		Engine:    classify.NewEngine(),
		Output:    os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
