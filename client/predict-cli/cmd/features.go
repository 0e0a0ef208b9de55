package cmd

import (
	"fmt"
	"text/tabwriter"

	"prediction_relay/backend/go/pkg/models"

	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the feature positions the oracle expects",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "POS\tNAME")
		for i, name := range models.FeatureNames {
			fmt.Fprintf(w, "%d\t%s\n", i, name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}
