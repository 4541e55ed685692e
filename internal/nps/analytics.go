package nps

import (
	"math"
	"sort"
	"time"

	"github.com/sells-group/nps-cli/internal/model"
)

// KPIs is the overview headline block.
type KPIs struct {
	Summary           Summary  `json:"summary"`
	Critical          int      `json:"critical"`
	OtherDetractors   int      `json:"other_detractors"`
	OpenTickets       int      `json:"open_tickets"`
	Promoters         int      `json:"promoters"`
	Passives          int      `json:"passives"`
	AvgFood           *float64 `json:"avg_food"`
	PromotersPercent  int      `json:"promoters_percent"`
	PassivesPercent   int      `json:"passives_percent"`
	DetractorsPercent int      `json:"detractors_percent"`
}

// Overview computes the overview KPIs.
func Overview(rs []model.Response) KPIs {
	s := Aggregate(rs)
	k := KPIs{
		Summary:           s,
		Promoters:         s.Promoters,
		Passives:          s.Passives,
		PromotersPercent:  s.Percent(Promoter),
		PassivesPercent:   s.Percent(Passive),
		DetractorsPercent: s.Percent(Detractor),
	}
	for _, r := range rs {
		if Classify(r.NPS) == Detractor {
			if *r.NPS <= CriticalMaxScore {
				k.Critical++
			} else {
				k.OtherDetractors++
			}
		}
		if r.TicketStatus == model.StatusOpen || r.TicketStatus == "" {
			k.OpenTickets++
		}
	}
	if avg, n := average(rs, func(r model.Response) *int { return r.Food }); n > 0 {
		k.AvgFood = &avg
	}
	return k
}

// BranchCount is the number of responses for one branch.
type BranchCount struct {
	Branch string `json:"branch"`
	Count  int    `json:"count"`
}

// BranchCounts tallies responses per branch in first-seen order.
func BranchCounts(rs []model.Response) []BranchCount {
	idx := make(map[string]int)
	var out []BranchCount
	for _, r := range rs {
		i, ok := idx[r.Branch]
		if !ok {
			i = len(out)
			idx[r.Branch] = i
			out = append(out, BranchCount{Branch: r.Branch})
		}
		out[i].Count++
	}
	return out
}

// Branches returns the distinct branch labels sorted alphabetically.
func Branches(rs []model.Response) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rs {
		if _, ok := seen[r.Branch]; ok {
			continue
		}
		seen[r.Branch] = struct{}{}
		out = append(out, r.Branch)
	}
	sort.Strings(out)
	return out
}

// Ratings holds the average secondary ratings, one decimal each.
type Ratings struct {
	Food    float64 `json:"food"`
	Service float64 `json:"service"`
	Price   float64 `json:"price"`
}

// RatingAverages averages the food, service and price ratings. A rating with
// no answers averages to 0.
func RatingAverages(rs []model.Response) Ratings {
	food, _ := average(rs, func(r model.Response) *int { return r.Food })
	service, _ := average(rs, func(r model.Response) *int { return r.Service })
	price, _ := average(rs, func(r model.Response) *int { return r.Price })
	return Ratings{Food: food, Service: service, Price: price}
}

// TrendPoint is the response count for one calendar day.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MaxTrendDays bounds the trend window.
const MaxTrendDays = 366

// Trend counts responses per UTC day over the trailing window ending on
// now's date, oldest day first. Windows longer than MaxTrendDays are
// clamped.
func Trend(rs []model.Response, now time.Time, days int) []TrendPoint {
	if days <= 0 {
		return nil
	}
	days = min(days, MaxTrendDays)
	counts := make(map[string]int)
	for _, r := range rs {
		counts[r.Date]++
	}
	today := now.UTC()
	out := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, TrendPoint{Date: key, Count: counts[key]})
	}
	return out
}

// Analytics bundles the chart data sets.
type Analytics struct {
	Distribution Summary       `json:"distribution"`
	Branches     []BranchCount `json:"branches"`
	Ratings      Ratings       `json:"ratings"`
	Trend        []TrendPoint  `json:"trend"`
}

// Analyze computes every chart data set at now.
func Analyze(rs []model.Response, now time.Time, trendDays int) Analytics {
	return Analytics{
		Distribution: Aggregate(rs),
		Branches:     BranchCounts(rs),
		Ratings:      RatingAverages(rs),
		Trend:        Trend(rs, now, trendDays),
	}
}

// average returns the mean of the present values rounded to one decimal and
// the number of values seen.
func average(rs []model.Response, get func(model.Response) *int) (float64, int) {
	sum, n := 0, 0
	for _, r := range rs {
		if v := get(r); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10, n
}
