package monitoring

import (
	"time"

	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/nps"
)

// MetricsSnapshot holds a point-in-time view of customer sentiment and the
// follow-up backlog.
type MetricsSnapshot struct {
	Responses  int `json:"responses"`
	Score      int `json:"score"`
	Promoters  int `json:"promoters"`
	Passives   int `json:"passives"`
	Detractors int `json:"detractors"`

	// Unresolved detractor tickets (open or in progress).
	CriticalOpen int `json:"critical_open"`
	Overdue      int `json:"overdue"`

	CollectedAt time.Time `json:"collected_at"`
}

// ResponseLister provides the responses to measure.
type ResponseLister interface {
	Responses() []model.Response
}

// Collector builds snapshots from a response lister.
type Collector struct {
	src ResponseLister
	now func() time.Time
}

// NewCollector creates a Collector. A nil now uses time.Now.
func NewCollector(src ResponseLister, now func() time.Time) *Collector {
	if now == nil {
		now = time.Now
	}
	return &Collector{src: src, now: now}
}

// Collect snapshots the current responses.
func (c *Collector) Collect() *MetricsSnapshot {
	return Snapshot(c.src.Responses(), c.now())
}

// Snapshot measures rs at now.
func Snapshot(rs []model.Response, now time.Time) *MetricsSnapshot {
	sum := nps.Aggregate(rs)
	snap := &MetricsSnapshot{
		Responses:   sum.Total,
		Score:       sum.Score,
		Promoters:   sum.Promoters,
		Passives:    sum.Passives,
		Detractors:  sum.Detractors,
		CollectedAt: now.UTC(),
	}

	for _, a := range nps.DetractorQueue(rs, now) {
		if !unresolved(a.Response.TicketStatus) {
			continue
		}
		if a.Priority == nps.Critical {
			snap.CriticalOpen++
		}
		if a.AgeDays > nps.UrgentAfterDays {
			snap.Overdue++
		}
	}
	return snap
}

func unresolved(s model.TicketStatus) bool {
	return s == model.StatusOpen || s == model.StatusInProgress || s == ""
}
