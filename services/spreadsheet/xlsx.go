// Package spreadsheet reads roll lists from and writes mark sheets to xlsx workbooks.
package spreadsheet

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/sheet"
)

// Roster column headers
const (
	RollHeader = "Register Number"
	NameHeader = "Name"
)

var (
	errEmptyWorkbook  = errors.New("the workbook has no sheet")
	errMissingHeaders = errors.New(`the first sheet must have "` + RollHeader + `" and "` + NameHeader + `" columns`)
)

// WriteXLSX writes s to w as a workbook with a single sheet.
func WriteXLSX(w io.Writer, s sheet.Sheet) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); err == nil && cErr != nil {
			err = errors.Wrap(cErr, "closing workbook")
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	for i, row := range s.Table() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		row := row
		if err = f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+1)
		}
	}
	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// ReadRoster reads the roll list on the first sheet of an xlsx workbook.
// Rows above the header row and blank rows are skipped. Cells are not validated here.
func ReadRoster(r io.Reader) ([]marks.RosterRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: "file", Error: "not a valid xlsx workbook"})
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewValidationError(errEmptyWorkbook, core.FieldError{Field: "file", Error: errEmptyWorkbook.Error()})
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "reading rows")
	}

	rollCol, nameCol, start := -1, -1, -1
	for i, row := range rows {
		rollCol, nameCol = -1, -1
		for j, cell := range row {
			switch strings.ToLower(core.CleanString(cell)) {
			case strings.ToLower(RollHeader):
				rollCol = j
			case strings.ToLower(NameHeader):
				nameCol = j
			}
		}
		if rollCol >= 0 && nameCol >= 0 {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, core.NewValidationError(errMissingHeaders, core.FieldError{Field: "file", Error: errMissingHeaders.Error()})
	}

	roster := make([]marks.RosterRow, 0, len(rows)-start)
	for _, row := range rows[start:] {
		roll, name := cellAt(row, rollCol), cellAt(row, nameCol)
		if roll == "" && name == "" {
			continue
		}
		roster = append(roster, marks.RosterRow{RollNumber: json.Number(roll), Name: name})
	}
	return roster, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return core.CleanString(row[i])
	}
	return ""
}
