package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/tenant-optimizer/pkg/services/inventory"
	"github.com/spf13/cobra"
)

func NewResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List resource types the scanner supports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			types := inventory.SupportedTypes()
			names := make([]string, len(types))
			for i, t := range types {
				names[i] = string(t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Supported resource types:\n%s\n", strings.Join(names, "\n"))
			return nil
		},
	}
}
