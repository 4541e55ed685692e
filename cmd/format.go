package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/monitoring"
	"github.com/sells-group/nps-cli/internal/nps"
)

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// score renders an optional rating, "-" when absent.
func score(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// age renders an age in days, "?" when the completion time is unknown.
func age(days int) string {
	if days == nps.UnknownAge {
		return "?"
	}
	return fmt.Sprintf("%dd", days)
}

func formatNotice(out io.Writer, notice string) {
	if notice != "" {
		_, _ = fmt.Fprintf(out, "! %s\n\n", notice)
	}
}

func formatKPIs(out io.Writer, k nps.KPIs) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "NPS score:\t%d\n", k.Summary.Score)
	_, _ = fmt.Fprintf(w, "Responses:\t%d\n", k.Summary.Total)
	_, _ = fmt.Fprintf(w, "Promoters:\t%d\t(%d%%)\n", k.Promoters, k.PromotersPercent)
	_, _ = fmt.Fprintf(w, "Passives:\t%d\t(%d%%)\n", k.Passives, k.PassivesPercent)
	_, _ = fmt.Fprintf(w, "Detractors:\t%d\t(%d%%)\n", k.Summary.Detractors, k.DetractorsPercent)
	_, _ = fmt.Fprintf(w, "  Critical:\t%d\n", k.Critical)
	_, _ = fmt.Fprintf(w, "  Other:\t%d\n", k.OtherDetractors)
	_, _ = fmt.Fprintf(w, "Open tickets:\t%d\n", k.OpenTickets)
	if k.AvgFood != nil {
		_, _ = fmt.Fprintf(w, "Avg food rating:\t%.1f\n", *k.AvgFood)
	} else {
		_, _ = fmt.Fprintln(w, "Avg food rating:\t-")
	}
	_ = w.Flush()
}

func formatQueue(out io.Writer, queue []nps.Assessment) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PRIORITY\tID\tDATE\tBRANCH\tNAME\tNPS\tAGE\tSTATUS\tCOMMENT")
	_, _ = fmt.Fprintln(w, "--------\t--\t----\t------\t----\t---\t---\t------\t-------")
	for _, a := range queue {
		r := a.Response
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.Priority,
			truncateID(r.ID),
			r.Date,
			truncate(r.Branch, 20),
			truncate(r.Name, 20),
			score(r.NPS),
			age(a.AgeDays),
			r.TicketStatus,
			truncate(r.NPSComment, 40),
		)
	}
	_ = w.Flush()
}

func formatResponses(out io.Writer, rs []model.Response, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATE\tBRANCH\tNAME\tNPS\tCATEGORY\tSTATUS\tAGING")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t----\t---\t--------\t------\t-----")
	for _, r := range rs {
		aging := nps.AgingFor(nps.AgeDays(r.CompletedAt, now), r.TicketStatus)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Date,
			truncate(r.Branch, 20),
			truncate(r.Name, 20),
			score(r.NPS),
			nps.Classify(r.NPS),
			r.TicketStatus,
			aging,
		)
	}
	_ = w.Flush()
}

func formatDetail(out io.Writer, r model.Response, now time.Time) {
	a := nps.Assess(r, now)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", label, value)
	}
	row("ID", r.ID)
	row("Date", r.Date)
	row("Receipt", r.Receipt)
	row("Branch", r.Branch)
	row("Name", r.Name)
	row("Email", r.Email)
	row("Phone", r.Phone)
	row("NPS", fmt.Sprintf("%s (%s)", score(r.NPS), nps.Classify(r.NPS)))
	if nps.Classify(r.NPS) == nps.Detractor {
		row("Priority", a.Priority.String())
	}
	row("Age", age(a.AgeDays))
	row("Ticket status", string(r.TicketStatus))
	row("NPS comment", r.NPSComment)
	row("Food", fmt.Sprintf("%s %s", score(r.Food), r.FoodComment))
	row("Service", fmt.Sprintf("%s %s", score(r.Service), r.ServiceComment))
	row("Price", fmt.Sprintf("%s %s", score(r.Price), r.PriceComment))
	row("Enjoyed experience", r.EnjoyExperience)
	row("Discovery", r.Discovery)
	row("Previous visit", r.PreviousVisit)
	row("Location", r.Location)
	row("Spend", r.Spend)
	row("Cuisines", r.Cuisines)
	row("Return intention", r.ReturnIntention)
	row("Follow updates", r.FollowUpdates)
	_ = w.Flush()
}

func formatAnalytics(out io.Writer, a nps.Analytics) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	d := a.Distribution
	_, _ = fmt.Fprintln(w, "DISTRIBUTION")
	_, _ = fmt.Fprintf(w, "Promoters\t%d\t%d%%\n", d.Promoters, d.Percent(nps.Promoter))
	_, _ = fmt.Fprintf(w, "Passives\t%d\t%d%%\n", d.Passives, d.Percent(nps.Passive))
	_, _ = fmt.Fprintf(w, "Detractors\t%d\t%d%%\n", d.Detractors, d.Percent(nps.Detractor))
	_, _ = fmt.Fprintf(w, "NPS\t%d\t\n", d.Score)

	_, _ = fmt.Fprintln(w, "\nBRANCHES")
	for _, b := range a.Branches {
		_, _ = fmt.Fprintf(w, "%s\t%d\t\n", b.Branch, b.Count)
	}

	_, _ = fmt.Fprintln(w, "\nRATINGS")
	_, _ = fmt.Fprintf(w, "Food\t%.1f\t\n", a.Ratings.Food)
	_, _ = fmt.Fprintf(w, "Service\t%.1f\t\n", a.Ratings.Service)
	_, _ = fmt.Fprintf(w, "Price\t%.1f\t\n", a.Ratings.Price)

	_, _ = fmt.Fprintf(w, "\nTREND (%d days)\n", len(a.Trend))
	for _, p := range a.Trend {
		_, _ = fmt.Fprintf(w, "%s\t%d\t\n", p.Date, p.Count)
	}
	_ = w.Flush()
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode json")
	}
	return nil
}

func formatAlerts(out io.Writer, alerts []monitoring.Alert) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEVERITY\tTYPE\tMESSAGE")
	_, _ = fmt.Fprintln(w, "--------\t----\t-------")
	for _, a := range alerts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", a.Severity, a.Type, a.Message)
	}
	_ = w.Flush()
}
