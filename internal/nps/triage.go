package nps

import (
	"math"
	"sort"
	"time"

	"github.com/sells-group/nps-cli/internal/model"
)

// UnknownAge is the age assigned to responses without a usable completion
// instant. It sorts them as the oldest entries of their tier.
const UnknownAge = math.MaxInt

// Priority is the triage tier of a detractor. Lower values are more urgent;
// the value doubles as the work-queue sort rank.
type Priority int

const (
	Critical Priority = iota
	Urgent
	High
	Normal
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "Critical"
	case Urgent:
		return "Urgent"
	case High:
		return "High"
	default:
		return "Normal"
	}
}

// MarshalText renders the tier label in JSON output.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Triage thresholds.
const (
	CriticalMaxScore = 3
	UrgentAfterDays  = 7
	HighAfterDays    = 3
)

// AgeDays returns whole days elapsed between completion and now.
// A nil instant yields UnknownAge.
func AgeDays(completed *time.Time, now time.Time) int {
	if completed == nil {
		return UnknownAge
	}
	return int(math.Floor(now.Sub(*completed).Hours() / 24))
}

// PriorityFor assigns the tier from score severity first, then age.
func PriorityFor(score int, ageDays int) Priority {
	switch {
	case score <= CriticalMaxScore:
		return Critical
	case ageDays > UrgentAfterDays:
		return Urgent
	case ageDays > HighAfterDays:
		return High
	default:
		return Normal
	}
}

// Aging is the age badge shown next to a response.
type Aging string

const (
	AgingFresh   Aging = "recent"
	AgingStale   Aging = "old"
	AgingOverdue Aging = "urgent"
	AgingUnknown Aging = "-"
)

// AgingFor classifies response age for display. Responses of UnknownAge get
// AgingUnknown whatever their status; resolved tickets are otherwise always
// shown as fresh.
func AgingFor(ageDays int, status model.TicketStatus) Aging {
	switch {
	case ageDays == UnknownAge:
		return AgingUnknown
	case status == model.StatusResolved:
		return AgingFresh
	case ageDays > UrgentAfterDays:
		return AgingOverdue
	case ageDays > HighAfterDays:
		return AgingStale
	default:
		return AgingFresh
	}
}

// Assessment is a detractor with its triage computed at a fixed instant.
type Assessment struct {
	Response model.Response `json:"response"`
	AgeDays  int            `json:"age_days"`
	Priority Priority       `json:"priority"`
}

// KnownAge reports whether the response had a usable completion instant.
func (a Assessment) KnownAge() bool {
	return a.AgeDays != UnknownAge
}

// Assess computes the triage of one scored response at now.
func Assess(r model.Response, now time.Time) Assessment {
	age := AgeDays(r.CompletedAt, now)
	score := 0
	if r.NPS != nil {
		score = *r.NPS
	}
	return Assessment{Response: r, AgeDays: age, Priority: PriorityFor(score, age)}
}

// DetractorQueue selects the detractors and orders them for follow-up:
// tier ascending, then oldest first. Ties keep input order.
func DetractorQueue(rs []model.Response, now time.Time) []Assessment {
	var queue []Assessment
	for _, r := range rs {
		if Classify(r.NPS) != Detractor {
			continue
		}
		queue = append(queue, Assess(r, now))
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].Priority != queue[j].Priority {
			return queue[i].Priority < queue[j].Priority
		}
		return queue[i].AgeDays > queue[j].AgeDays
	})
	return queue
}
