package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "List survey responses matching the filters",
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

		formatNotice(os.Stderr, st.Notice())

		rs := st.Filter(c)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, rs)
		}
		if len(rs) == 0 {
			fmt.Fprintln(os.Stderr, "No responses found.")
			return nil
		}

		formatResponses(os.Stdout, rs, clock())
		fmt.Fprintf(os.Stderr, "\n%d of %d responses\n", len(rs), st.Len())
		return nil
	},
}

func init() {
	addFilterFlags(responsesCmd)
	responsesCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(responsesCmd)
}
