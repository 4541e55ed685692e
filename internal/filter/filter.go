// Package filter narrows response collections for the dashboard views.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/nps"
)

// All is the dropdown value that disables a criterion.
const All = "all"

// Criteria describes a response filter. Empty fields and the value "all"
// impose no constraint; every other field must hold for a response to match.
type Criteria struct {
	Search    string `json:"search,omitempty"`
	DateStart string `json:"date_start,omitempty"`
	DateEnd   string `json:"date_end,omitempty"`
	Category  string `json:"category,omitempty"`
	Branch    string `json:"branch,omitempty"`
	Status    string `json:"status,omitempty"`
}

// IsZero reports whether the criteria match everything.
func (c Criteria) IsZero() bool {
	return !set(c.Search) && !set(c.DateStart) && !set(c.DateEnd) &&
		!set(c.Category) && !set(c.Branch) && !set(c.Status)
}

// Apply returns the responses matching c in their original order.
// The input slice is not modified.
func Apply(rs []model.Response, c Criteria) []model.Response {
	m := newMatcher(c)
	out := make([]model.Response, 0, len(rs))
	for _, r := range rs {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// ByCategoryNewest selects one NPS band ordered newest first, as the
// overview passive and promoter tabs list them. Responses without a
// completion instant sort last.
func ByCategoryNewest(rs []model.Response, cat nps.Category) []model.Response {
	out := Apply(rs, Criteria{Category: string(cat)})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CompletedAt, out[j].CompletedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}

type matcher struct {
	c      Criteria
	folder cases.Caser
	needle string
}

func newMatcher(c Criteria) *matcher {
	m := &matcher{c: c, folder: cases.Fold()}
	if set(c.Search) {
		m.needle = m.folder.String(c.Search)
	}
	return m
}

func (m *matcher) match(r model.Response) bool {
	c := m.c
	if m.needle != "" && !m.contains(r.NPSComment) && !m.contains(r.Name) && !m.contains(r.Email) {
		return false
	}
	if set(c.DateStart) && r.Date < c.DateStart {
		return false
	}
	if set(c.DateEnd) && r.Date > c.DateEnd {
		return false
	}
	if set(c.Category) && string(nps.Classify(r.NPS)) != normalizeCategory(c.Category) {
		return false
	}
	if set(c.Branch) && r.Branch != c.Branch {
		return false
	}
	if set(c.Status) && string(r.TicketStatus) != c.Status {
		return false
	}
	return true
}

func (m *matcher) contains(field string) bool {
	return field != "" && strings.Contains(m.folder.String(field), m.needle)
}

func normalizeCategory(s string) string {
	if cat, ok := nps.ParseCategory(s); ok {
		return string(cat)
	}
	return s
}

func set(s string) bool {
	return s != "" && s != All
}
