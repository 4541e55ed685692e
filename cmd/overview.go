package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nps-cli/internal/filter"
	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/nps"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show NPS KPIs and the detractor follow-up queue",
	Long: "Prints the NPS score, category counts and open tickets, followed by the detractor queue " +
		"ordered by priority. With --category, lists that category's responses instead: detractors " +
		"in queue order, passives and promoters newest first.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, closeFn, err := loadState(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		category, _ := cmd.Flags().GetString("category")
		asJSON, _ := cmd.Flags().GetBool("json")
		now := clock()
		rs := st.Responses()

		formatNotice(os.Stderr, st.Notice())

		if category != "" {
			cat, ok := nps.ParseCategory(category)
			if !ok {
				return eris.Errorf("invalid category %q", category)
			}
			if cat == nps.Detractor {
				queue := nps.DetractorQueue(rs, now)
				if asJSON {
					return writeJSON(os.Stdout, queue)
				}
				if len(queue) == 0 {
					fmt.Fprintln(os.Stderr, "No responses found.")
					return nil
				}
				formatQueue(os.Stdout, queue)
				return nil
			}
			list := categoryList(rs, cat, now)
			if asJSON {
				return writeJSON(os.Stdout, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(os.Stderr, "No responses found.")
				return nil
			}
			formatResponses(os.Stdout, list, now)
			return nil
		}

		kpis := nps.Overview(rs)
		queue := nps.DetractorQueue(rs, now)
		if asJSON {
			return writeJSON(os.Stdout, map[string]any{
				"kpis":       kpis,
				"detractors": queue,
			})
		}

		formatKPIs(os.Stdout, kpis)
		if len(queue) == 0 {
			return nil
		}
		fmt.Fprintln(os.Stdout)
		formatQueue(os.Stdout, queue)
		return nil
	},
}

func init() {
	overviewCmd.Flags().String("category", "", "list one category instead: promoters, passives or detractors")
	overviewCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(overviewCmd)
}

// categoryList lists one NPS band for the overview tabs. Detractors keep
// the follow-up queue order; the other bands list newest first.
func categoryList(rs []model.Response, cat nps.Category, now time.Time) []model.Response {
	if cat != nps.Detractor {
		return filter.ByCategoryNewest(rs, cat)
	}
	queue := nps.DetractorQueue(rs, now)
	out := make([]model.Response, len(queue))
	for i, a := range queue {
		out[i] = a.Response
	}
	return out
}
