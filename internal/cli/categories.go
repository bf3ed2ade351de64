package cli

import (
	"github.com/spf13/cobra"

	"github.com/toppgo/toppgo/pkg/topp"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the annotation categories the service supports",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printInfo("%d annotation categories:", len(topp.Categories()))
			for _, c := range topp.Categories() {
				printDetail("%s", c)
			}
		},
	}
}
