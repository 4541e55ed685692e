package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/nps-cli/internal/model"
)

// SheetName is the worksheet holding exported responses.
const SheetName = "Responses"

// WriteXLSX writes the same columns as WriteCSV to a single-sheet workbook.
// Ratings are numeric cells; missing ratings are left blank.
func WriteXLSX(w io.Writer, rs []model.Response) error {
	if len(rs) == 0 {
		return ErrEmpty
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range Columns {
		header.AddCell().SetString(col)
	}

	for _, r := range Rows(rs) {
		row := sheet.AddRow()
		addString(row, r.Date, r.Receipt, r.Branch, r.Name, r.Email, r.Phone)
		addInt(row, r.NPS)
		addString(row, r.NPSCategory, r.NPSComment)
		addInt(row, r.FoodRating)
		addString(row, r.FoodComment)
		addInt(row, r.ServiceRating)
		addString(row, r.ServiceComment)
		addInt(row, r.PriceRating)
		addString(row, r.PriceComment, r.EnjoyExperience, r.Discovery, r.Spend,
			r.Cuisines, r.ReturnIntention, r.TicketStatus)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addString(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addInt(row *xlsx.Row, v *int) {
	cell := row.AddCell()
	if v != nil {
		cell.SetInt(*v)
	}
}
