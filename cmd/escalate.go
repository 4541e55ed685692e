package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nps-cli/internal/escalate"
	"github.com/sells-group/nps-cli/pkg/notion"
)

var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Push open detractor tickets to the Notion follow-up board",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		vocOnly, _ := cmd.Flags().GetBool("voc-only")
		if !dryRun {
			if err := cfg.Validate("escalate"); err != nil {
				return err
			}
		}

		st, closeFn, err := loadState(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		formatNotice(os.Stderr, st.Notice())

		client := notion.NewClient(cfg.Notion)
		out, err := escalate.New(client, cfg.Notion.FollowUpDB).
			Push(ctx, st.Responses(), clock(), escalate.Options{VOCOnly: vocOnly, DryRun: dryRun})
		if err != nil {
			return eris.Wrap(err, "escalate")
		}

		if len(out.Planned) == 0 {
			fmt.Fprintln(os.Stderr, "No tickets to escalate.")
			return nil
		}
		if dryRun {
			formatQueue(os.Stdout, out.Planned)
			return nil
		}
		fmt.Fprintf(os.Stderr, "Escalated %d tickets (%d created, %d updated)\n",
			out.Created+out.Updated, out.Created, out.Updated)
		return nil
	},
}

func init() {
	escalateCmd.Flags().Bool("voc-only", false, "only push tickets marked voc")
	escalateCmd.Flags().Bool("dry-run", false, "list the tickets without calling Notion")
	rootCmd.AddCommand(escalateCmd)
}
