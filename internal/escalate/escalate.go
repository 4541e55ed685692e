// Package escalate mirrors the detractor follow-up queue onto a Notion
// database so the team can work tickets there.
package escalate

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/nps"
	"github.com/sells-group/nps-cli/pkg/notion"
)

// Follow-up board property names.
const (
	PropCustomer   = "Customer"
	PropResponseID = "Response ID"
	PropBranch     = "Branch"
	PropNPS        = "NPS"
	PropPriority   = "Priority"
	PropStatus     = "Status"
	PropAge        = "Age (days)"
	PropSubmitted  = "Submitted"
	PropFeedback   = "Feedback"
	PropEmail      = "Email"
)

// Options controls which detractors are pushed.
type Options struct {
	// VOCOnly limits the push to tickets marked voc.
	VOCOnly bool
	// DryRun computes the plan without calling Notion.
	DryRun bool
}

// Outcome summarizes a push.
type Outcome struct {
	Created int
	Updated int
	Planned []nps.Assessment
}

// Escalator writes follow-up pages to one Notion database.
type Escalator struct {
	client notion.Client
	dbID   string
}

// New creates an Escalator for the database dbID.
func New(client notion.Client, dbID string) *Escalator {
	return &Escalator{client: client, dbID: dbID}
}

// Select returns the detractors to push at now, in triage order. Resolved
// and inactive tickets are skipped.
func Select(rs []model.Response, now time.Time, vocOnly bool) []nps.Assessment {
	var out []nps.Assessment
	for _, a := range nps.DetractorQueue(rs, now) {
		st := a.Response.TicketStatus
		if vocOnly && st != model.StatusVOC {
			continue
		}
		if st == model.StatusResolved || st == model.StatusInactive {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Push creates a page for each selected detractor, or refreshes the page
// already carrying its response id. On error the counts so far are returned.
func (e *Escalator) Push(ctx context.Context, rs []model.Response, now time.Time, opts Options) (*Outcome, error) {
	out := &Outcome{Planned: Select(rs, now, opts.VOCOnly)}
	if opts.DryRun {
		return out, nil
	}

	log := zap.L().With(zap.String("component", "escalate"), zap.String("database", e.dbID))

	for _, a := range out.Planned {
		if ctx.Err() != nil {
			return out, eris.Wrap(ctx.Err(), "escalate: push cancelled")
		}

		existing, err := e.client.FindPages(ctx, e.dbID, PropResponseID, a.Response.ID)
		if err != nil {
			return out, eris.Wrapf(err, "escalate: look up %s", a.Response.ID)
		}

		props := Properties(a)
		if len(existing) > 0 {
			pageID := string(existing[0].ID)
			if _, err := e.client.UpdatePage(ctx, pageID, props); err != nil {
				return out, eris.Wrapf(err, "escalate: update page for %s", a.Response.ID)
			}
			out.Updated++
			log.Debug("follow-up page updated", zap.String("response_id", a.Response.ID), zap.String("page_id", pageID))
			continue
		}

		if _, err := e.client.CreatePage(ctx, e.dbID, props); err != nil {
			return out, eris.Wrapf(err, "escalate: create page for %s", a.Response.ID)
		}
		out.Created++
		log.Debug("follow-up page created", zap.String("response_id", a.Response.ID))
	}

	log.Info("escalation complete",
		zap.Int("planned", len(out.Planned)),
		zap.Int("created", out.Created),
		zap.Int("updated", out.Updated),
	)
	return out, nil
}

// Properties builds the follow-up page properties for one assessment.
func Properties(a nps.Assessment) notionapi.Properties {
	r := a.Response
	props := notionapi.Properties{
		PropCustomer:   notion.Title(r.Name),
		PropResponseID: notion.RichText(r.ID),
		PropBranch:     notion.RichText(r.Branch),
		PropPriority:   notion.Select(a.Priority.String()),
		PropStatus:     notion.Select(string(r.TicketStatus)),
		PropSubmitted:  notion.RichText(r.Date),
	}
	if r.NPS != nil {
		props[PropNPS] = notion.Number(float64(*r.NPS))
	}
	if a.KnownAge() {
		props[PropAge] = notion.Number(float64(a.AgeDays))
	}
	if r.NPSComment != "" {
		props[PropFeedback] = notion.RichText(r.NPSComment)
	}
	if r.Email != "" {
		props[PropEmail] = notion.Email(r.Email)
	}
	return props
}
