// Package export renders the rating table as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/nbaelo/internal/domain/types"
)

// Sheet is the worksheet that holds the table.
const Sheet = "Sheet1"

// ContentType of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []interface{}{"rank", "team", "rating"}

// WriteRatings writes entries as an XLSX workbook to w, one row per team
// below a header row.
func WriteRatings(w io.Writer, entries []types.Entry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, e := range entries {
		if err := setRow(f, i+2, []interface{}{e.Rank, e.Team, e.Rating}); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	if err := f.SetSheetRow(Sheet, cell, &values); err != nil {
		return fmt.Errorf("%w: row %d: %v", ErrWorkbook, row, err)
	}
	return nil
}
