package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <response-id>",
	Short: "Show every answer of one response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, closeFn, err := loadState(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		formatNotice(os.Stderr, st.Notice())

		r, ok := st.Find(args[0])
		if !ok {
			return eris.Errorf("response %s not found", args[0])
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, r)
		}
		formatDetail(os.Stdout, r, clock())
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(showCmd)
}
