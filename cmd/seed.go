package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nps-cli/internal/source"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fixture submissions into a postgres or sqlite source",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("source"); err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("file")
		f, err := os.Open(path)
		if err != nil {
			return eris.Wrap(err, "seed: open fixtures")
		}
		defer f.Close() //nolint:errcheck

		subs, err := source.LoadFixtures(f)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			fmt.Fprintln(os.Stderr, "No submissions in fixture file.")
			return nil
		}

		src, err := source.Open(ctx, cfg.Source)
		if err != nil {
			return eris.Wrap(err, "seed: open source")
		}
		defer src.Close() //nolint:errcheck

		seeder, ok := src.(source.Seeder)
		if !ok {
			return eris.Errorf("seed: driver %q does not accept fixtures", cfg.Source.Driver)
		}

		n, err := seeder.Seed(ctx, subs)
		if err != nil {
			return err
		}

		zap.L().Info("fixtures seeded", zap.String("file", path), zap.Int64("rows", n))
		fmt.Fprintf(os.Stderr, "Seeded %d submissions\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "fixtures.yaml", "YAML fixture file")
	rootCmd.AddCommand(seedCmd)
}
