// Package nps computes Net Promoter Score metrics, detractor triage and
// dashboard analytics over normalized survey responses. Every function is
// pure; anything time-dependent takes the current instant as a parameter.
package nps

import "github.com/sells-group/nps-cli/internal/model"

// Category is the NPS band of a score.
type Category string

const (
	Unknown   Category = "unknown"
	Detractor Category = "detractor"
	Passive   Category = "passive"
	Promoter  Category = "promoter"
)

// ParseCategory accepts the singular band names and the plural forms used by
// the overview tabs ("detractors", "passives", "promoters").
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "detractor", "detractors":
		return Detractor, true
	case "passive", "passives":
		return Passive, true
	case "promoter", "promoters":
		return Promoter, true
	case "unknown":
		return Unknown, true
	}
	return "", false
}

// Classify maps a score onto its band. A nil score is Unknown.
func Classify(score *int) Category {
	if score == nil {
		return Unknown
	}
	switch {
	case *score <= 6:
		return Detractor
	case *score <= 8:
		return Passive
	default:
		return Promoter
	}
}

// Summary is the headline NPS block.
type Summary struct {
	Score      int `json:"score"`
	Promoters  int `json:"promoters"`
	Passives   int `json:"passives"`
	Detractors int `json:"detractors"`
	Total      int `json:"total"`
}

// Aggregate counts bands over the scored responses and derives the score.
// Unscored responses are ignored; an empty set scores 0.
func Aggregate(rs []model.Response) Summary {
	var s Summary
	for _, r := range rs {
		switch Classify(r.NPS) {
		case Promoter:
			s.Promoters++
		case Passive:
			s.Passives++
		case Detractor:
			s.Detractors++
		default:
			continue
		}
		s.Total++
	}
	s.Score = RoundPercent(s.Promoters-s.Detractors, s.Total)
	return s
}

// Percent returns the rounded share of a band, 0 when there are no scores.
func (s Summary) Percent(c Category) int {
	switch c {
	case Promoter:
		return RoundPercent(s.Promoters, s.Total)
	case Passive:
		return RoundPercent(s.Passives, s.Total)
	case Detractor:
		return RoundPercent(s.Detractors, s.Total)
	}
	return 0
}

// RoundPercent returns num/den*100 rounded half away from zero, using
// integer arithmetic so ties are exact. Negative ties also round away from
// zero: -0.5 gives -1, where round-half-up would give 0. A zero denominator
// yields 0.
func RoundPercent(num, den int) int {
	if den <= 0 {
		return 0
	}
	n := num * 100
	neg := n < 0
	if neg {
		n = -n
	}
	q := (2*n + den) / (2 * den)
	if neg {
		return -q
	}
	return q
}
