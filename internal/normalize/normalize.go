// Package normalize maps raw survey submissions onto canonical responses.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/nps-cli/internal/model"
)

// timestampLayouts are tried in order when parsing submission timestamps.
// The service returns RFC 3339; Postgres text casts use a space separator.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Normalize converts a raw submission into a canonical response. It never
// fails: missing or malformed fields fall back to empty values, nil ratings
// and the "Unknown" branch.
func Normalize(s model.Submission) model.Response {
	sd := s.SurveyData
	if sd == nil {
		sd = map[string]any{}
	}

	r := model.Response{
		ID:              s.ID,
		Date:            effectiveDate(s),
		CompletedAt:     effectiveInstant(s),
		Receipt:         orDefault(s.ReceiptNo, "-"),
		Branch:          orDefault(text(sd[model.KeyBranch]), orDefault(s.Brand, model.UnknownBranch)),
		Name:            orDefault(s.Name, "-"),
		Email:           s.Email,
		Phone:           s.ContactNumber,
		NPS:             rating(sd[model.KeyNPS]),
		NPSComment:      text(sd[model.KeyNPSComment]),
		NPSCommentType:  text(sd[model.KeyNPSCommentType]),
		Food:            rating(sd[model.KeyFood]),
		FoodComment:     text(sd[model.KeyFoodComment]),
		Service:         rating(sd[model.KeyService]),
		ServiceComment:  text(sd[model.KeyServiceComment]),
		Price:           rating(sd[model.KeyPrice]),
		PriceComment:    text(sd[model.KeyPriceComment]),
		EnjoyExperience: text(sd[model.KeyEnjoy]),
		EnjoyComment:    text(sd[model.KeyEnjoyComment]),
		Discovery:       text(sd[model.KeyDiscovery]),
		PreviousVisit:   text(sd[model.KeyPreviousVisit]),
		Location:        text(sd[model.KeyLocation]),
		Spend:           text(sd[model.KeySpend]),
		Cuisines:        text(sd[model.KeyCuisines]),
		ReturnIntention: text(sd[model.KeyReturnIntention]),
		FollowUpdates:   text(sd[model.KeyFollowUpdates]),
	}
	r.TicketStatus = TicketStatus(s.TicketStatus, r.NPS)
	return r
}

// All normalizes a batch and drops responses without an NPS answer.
// Input order is preserved.
func All(subs []model.Submission) []model.Response {
	out := make([]model.Response, 0, len(subs))
	for _, s := range subs {
		r := Normalize(s)
		if !r.HasScore() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TicketStatus resolves the workflow status of a response. A stored status
// from the vocabulary wins; otherwise detractors start open and everything
// else, including unscored responses, starts resolved.
func TicketStatus(stored string, nps *int) model.TicketStatus {
	if ts, ok := model.ParseTicketStatus(strings.TrimSpace(stored)); ok {
		return ts
	}
	if nps != nil && *nps <= 6 {
		return model.StatusOpen
	}
	return model.StatusResolved
}

func effectiveDate(s model.Submission) string {
	for _, ts := range []string{s.CompletedAt, s.CreatedAt} {
		if len(ts) >= 10 {
			return ts[:10]
		}
	}
	return "-"
}

func effectiveInstant(s model.Submission) *time.Time {
	ts := s.CompletedAt
	if ts == "" {
		ts = s.CreatedAt
	}
	return ParseTimestamp(ts)
}

// ParseTimestamp parses a submission timestamp, returning nil when the
// value is empty or in no known layout.
func ParseTimestamp(ts string) *time.Time {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// rating reads a 0-10 integer answer. Anything else is treated as absent.
func rating(v any) *int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || f != math.Trunc(f) || f < 0 || f > 10 {
		return nil
	}
	n := int(f)
	return &n
}

// text renders a free-form answer as a string.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := text(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(x, ", ")
	default:
		return ""
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
