package main

import (
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nps-cli/internal/filter"
	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/nps"
)

// addFilterFlags registers the response filter flags on cmd.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "case-insensitive text search over name, email and comments")
	cmd.Flags().String("from", "", "earliest response date (YYYY-MM-DD, inclusive)")
	cmd.Flags().String("to", "", "latest response date (YYYY-MM-DD, inclusive)")
	cmd.Flags().String("nps", filter.All, "NPS category: promoters, passives, detractors or all")
	cmd.Flags().String("branch", filter.All, "branch name or all")
	cmd.Flags().String("status", filter.All, "ticket status: open, in_progress, resolved, voc, inactive or all")
}

// criteriaFromFlags reads the filter flags registered by addFilterFlags.
// Flags that were not registered are left empty.
func criteriaFromFlags(cmd *cobra.Command) (filter.Criteria, error) {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	c := filter.Criteria{
		Search:    get("search"),
		DateStart: get("from"),
		DateEnd:   get("to"),
		Category:  get("nps"),
		Branch:    get("branch"),
		Status:    get("status"),
	}
	return c, validateCriteria(c)
}

// criteriaFromQuery reads filter criteria from URL query parameters.
func criteriaFromQuery(q url.Values) (filter.Criteria, error) {
	c := filter.Criteria{
		Search:    q.Get("search"),
		DateStart: q.Get("from"),
		DateEnd:   q.Get("to"),
		Category:  q.Get("nps"),
		Branch:    q.Get("branch"),
		Status:    q.Get("status"),
	}
	return c, validateCriteria(c)
}

func validateCriteria(c filter.Criteria) error {
	for _, d := range []string{c.DateStart, c.DateEnd} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return eris.Errorf("invalid date %q: want YYYY-MM-DD", d)
		}
	}
	if c.Category != "" && c.Category != filter.All {
		if _, ok := nps.ParseCategory(c.Category); !ok {
			return eris.Errorf("invalid NPS category %q", c.Category)
		}
	}
	if c.Status != "" && c.Status != filter.All {
		if _, ok := model.ParseTicketStatus(c.Status); !ok {
			return eris.Errorf("invalid ticket status %q", c.Status)
		}
	}
	return nil
}
