// Package excel converts spreadsheet uploads to CSV so the ingestion
// pipeline stays text-only.
package excel

import (
	"bytes"
	"encoding/csv"

	"github.com/xuri/excelize/v2"

	"spendlens/internal/errors"
)

// Converter reads the first sheet of a workbook and re-emits it as CSV.
type Converter struct{}

func NewConverter() *Converter {
	return &Converter{}
}

// ToCSV renders the first sheet of the workbook as comma-separated
// text. Formulas come back as their computed values.
func (c *Converter) ToCSV(data []byte) ([]byte, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "could not open workbook")
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseFailed("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "could not read sheet")
	}
	if len(rows) == 0 {
		return nil, errors.ParseFailed("sheet is empty")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, "could not write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "could not flush csv")
	}
	return buf.Bytes(), nil
}
