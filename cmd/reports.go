package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/roadstats-cli/internal/report"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the charts generate renders, in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range report.Catalog().List() {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s: %s (%s, %s)\n", d.Name, d.Title, d.Field, d.Kind)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}
