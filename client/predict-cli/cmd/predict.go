package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var featuresFlag string

var predictCmd = &cobra.Command{
	Use:     "predict",
	Short:   "Submit a feature vector and print the prediction",
	Example: `  predict-cli predict --features 30,22.5,1,80,0,37,75,35,0,0.8,9000,30,8,3,0,28,2,90,140,120,0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		features, err := parseFeatures(featuresFlag)
		if err != nil {
			return err
		}
		var outcome map[string]interface{}
		payload := map[string]interface{}{"features": features}
		if err := call(cmd.Context(), httpClient(), http.MethodPost, endpoint("/predict"), payload, &outcome); err != nil {
			return err
		}
		out, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().StringVarP(&featuresFlag, "features", "f", "", "comma-separated feature values")
	_ = predictCmd.MarkFlagRequired("features")
}
