// Package workbook decodes Excel workbooks into the raw cell grids the
// statement parser consumes. It is the only package that touches the xlsx
// format; everything downstream works on resolved string grids.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	apperrors "dealdesk/internal/errors"
	"dealdesk/internal/statement"
)

// Load opens an xlsx workbook and returns one sheet per tab, in workbook
// order. Formulas and number formatting are resolved by the decoder, so
// every cell arrives as its displayed string. A tab that fails to read is
// returned with an empty grid rather than aborting the whole workbook;
// the parser decides what is worth keeping.
func Load(path string) ([]statement.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, apperrors.NewStructuralParseError("workbook has no sheets", nil).
			WithContext("path", path)
	}

	sheets := make([]statement.Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			sheets = append(sheets, statement.Sheet{Name: name})
			continue
		}
		sheets = append(sheets, statement.Sheet{Name: name, Grid: rows})
	}
	return sheets, nil
}
