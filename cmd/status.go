package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nps-cli/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status <response-id> <status>",
	Short: "Set the ticket status of a response",
	Long:  "Valid statuses: open, in_progress, resolved, voc, inactive.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		status, ok := model.ParseTicketStatus(args[1])
		if !ok {
			return eris.Errorf("invalid ticket status %q", args[1])
		}

		st, closeFn, err := loadState(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		formatNotice(os.Stderr, st.Notice())

		res := st.SetStatus(ctx, args[0], status)
		if !res.OK() {
			// Nothing outlives this process, so an unpersisted edit is lost.
			return eris.Wrap(res.Err, "status update failed")
		}

		fmt.Fprintf(os.Stdout, "%s: %s -> %s\n", res.ID, res.Previous, res.Current)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
