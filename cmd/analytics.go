package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nps-cli/internal/nps"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show NPS distribution, branch counts, rating averages and the daily trend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		c, err := criteriaFromFlags(cmd)
		if err != nil {
			return err
		}

		st, closeFn, err := loadState(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		days, _ := cmd.Flags().GetInt("days")
		if days > nps.MaxTrendDays {
			return eris.Errorf("--days must be at most %d", nps.MaxTrendDays)
		}
		if days <= 0 {
			days = cfg.Dashboard.TrendDays
		}

		formatNotice(os.Stderr, st.Notice())

		a := nps.Analyze(st.Filter(c), clock(), days)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, a)
		}
		formatAnalytics(os.Stdout, a)
		return nil
	},
}

func init() {
	addFilterFlags(analyticsCmd)
	analyticsCmd.Flags().Int("days", 0, "trend window in days (default from config)")
	analyticsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(analyticsCmd)
}
