package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nps-cli/internal/export"
	"github.com/sells-group/nps-cli/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export filtered responses to CSV or Excel",
	Long: "Writes the responses matching the filters to a dated file in the export directory. " +
		"Use --out - to write to stdout.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, _ := cmd.Flags().GetString("format")
		write, err := exportWriter(format)
		if err != nil {
			return err
		}

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
		if len(rs) == 0 {
			fmt.Fprintln(os.Stderr, "No data to export.")
			return nil
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "-" {
			return write(os.Stdout, rs)
		}
		if out == "" {
			out = filepath.Join(cfg.Export.Dir, export.FileName(cfg.Export.Prefix, clock(), format))
		}

		f, err := os.Create(out)
		if err != nil {
			return eris.Wrap(err, "export: create file")
		}
		if err := write(f, rs); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrap(err, "export: close file")
		}

		zap.L().Info("export written", zap.String("path", out), zap.Int("responses", len(rs)))
		fmt.Fprintf(os.Stderr, "Exported %d responses to %s\n", len(rs), out)
		return nil
	},
}

// exportWriter returns the encoder for an export format.
func exportWriter(format string) (func(io.Writer, []model.Response) error, error) {
	switch format {
	case "csv":
		return export.WriteCSV, nil
	case "xlsx":
		return export.WriteXLSX, nil
	}
	return nil, eris.Errorf("unsupported export format %q: want csv or xlsx", format)
}

func init() {
	addFilterFlags(exportCmd)
	exportCmd.Flags().String("format", "csv", "file format: csv or xlsx")
	exportCmd.Flags().String("out", "", "output path (default <export.dir>/<prefix>-<date>.<format>)")
	rootCmd.AddCommand(exportCmd)
}
