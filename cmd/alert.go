package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/nps-cli/internal/monitoring"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Evaluate alert thresholds and notify the webhook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if !dryRun {
			if err := cfg.Validate("alert"); err != nil {
				return err
			}
		}

		st, closeFn, err := loadState(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		formatNotice(os.Stderr, st.Notice())

		alerter := monitoring.NewAlerter(cfg.Monitoring)
		alerts := alerter.Evaluate(monitoring.Snapshot(st.Responses(), clock()))
		if len(alerts) == 0 {
			fmt.Fprintln(os.Stderr, "No alerts triggered.")
			return nil
		}

		formatAlerts(os.Stdout, alerts)
		if dryRun {
			return nil
		}

		sent := alerter.SendAlerts(ctx, alerts)
		fmt.Fprintf(os.Stderr, "Sent %d of %d alerts\n", sent, len(alerts))
		return nil
	},
}

func init() {
	alertCmd.Flags().Bool("dry-run", false, "print alerts without sending them")
	rootCmd.AddCommand(alertCmd)
}
