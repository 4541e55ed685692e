// Package export writes response collections to downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/nps"
)

// Row is one exported response. Field order defines the column order.
type Row struct {
	Date            string `csv:"Date"`
	Receipt         string `csv:"Receipt"`
	Branch          string `csv:"Branch"`
	Name            string `csv:"Name"`
	Email           string `csv:"Email"`
	Phone           string `csv:"Phone"`
	NPS             *int   `csv:"NPS"`
	NPSCategory     string `csv:"NPS Category"`
	NPSComment      string `csv:"NPS Comment"`
	FoodRating      *int   `csv:"Food Rating"`
	FoodComment     string `csv:"Food Comment"`
	ServiceRating   *int   `csv:"Service Rating"`
	ServiceComment  string `csv:"Service Comment"`
	PriceRating     *int   `csv:"Price Rating"`
	PriceComment    string `csv:"Price Comment"`
	EnjoyExperience string `csv:"Enjoy Experience"`
	Discovery       string `csv:"Discovery"`
	Spend           string `csv:"Spend"`
	Cuisines        string `csv:"Cuisines"`
	ReturnIntention string `csv:"Return Intention"`
	TicketStatus    string `csv:"Ticket Status"`
}

// Columns lists the export header in order.
var Columns = []string{
	"Date", "Receipt", "Branch", "Name", "Email", "Phone",
	"NPS", "NPS Category", "NPS Comment",
	"Food Rating", "Food Comment",
	"Service Rating", "Service Comment",
	"Price Rating", "Price Comment",
	"Enjoy Experience", "Discovery", "Spend", "Cuisines",
	"Return Intention", "Ticket Status",
}

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = eris.New("export: no responses to export")

// Rows converts responses to export rows.
func Rows(rs []model.Response) []Row {
	rows := make([]Row, len(rs))
	for i, r := range rs {
		rows[i] = Row{
			Date:            r.Date,
			Receipt:         r.Receipt,
			Branch:          r.Branch,
			Name:            r.Name,
			Email:           r.Email,
			Phone:           r.Phone,
			NPS:             r.NPS,
			NPSCategory:     string(nps.Classify(r.NPS)),
			NPSComment:      r.NPSComment,
			FoodRating:      r.Food,
			FoodComment:     r.FoodComment,
			ServiceRating:   r.Service,
			ServiceComment:  r.ServiceComment,
			PriceRating:     r.Price,
			PriceComment:    r.PriceComment,
			EnjoyExperience: r.EnjoyExperience,
			Discovery:       r.Discovery,
			Spend:           r.Spend,
			Cuisines:        r.Cuisines,
			ReturnIntention: r.ReturnIntention,
			TicketStatus:    string(r.TicketStatus),
		}
	}
	return rows
}

// WriteCSV encodes responses as RFC 4180 CSV with a fixed header row.
// Fields containing commas, quotes or newlines are quoted, with embedded
// quotes doubled. Returns ErrEmpty when rs is empty.
func WriteCSV(w io.Writer, rs []model.Response) error {
	if len(rs) == 0 {
		return ErrEmpty
	}

	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.Encode(Rows(rs)); err != nil {
		return eris.Wrap(err, "export: encode csv")
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

// FileName returns the download name for an export created at now, e.g.
// food-truck-survey-export-2025-06-15.csv. The date is taken in UTC.
func FileName(prefix string, now time.Time, ext string) string {
	if prefix == "" {
		prefix = "food-truck-survey-export"
	}
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s-%s.%s", prefix, now.UTC().Format("2006-01-02"), ext)
}
