package cmd

import (
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type historyRecord struct {
	ID         string        `json:"_id"`
	Features   []interface{} `json:"features"`
	Prediction string        `json:"prediction"`
	Result     string        `json:"result"`
	CreatedAt  time.Time     `json:"createdAt"`
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored predictions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var records []historyRecord
		if err := call(cmd.Context(), httpClient(), http.MethodGet, endpoint("/history"), nil, &records); err != nil {
			return err
		}
		if historyLimit > 0 && len(records) > historyLimit {
			records = records[:historyLimit]
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CREATED\tPREDICTION\tRESULT\tFEATURES")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d values\n", r.CreatedAt.Local().Format(time.DateTime), r.Prediction, r.Result, len(r.Features))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n records (0 for all)")
}
