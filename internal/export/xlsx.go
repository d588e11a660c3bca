package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/KENnotcode/taanscrape/internal/model"
)

// sheetName is the worksheet holding the member rows.
const sheetName = "Members"

// XLSXWriter outputs records as an Excel workbook with a single sheet.
type XLSXWriter struct {
	output io.Writer
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{output: output}
}

// Write outputs the header row followed by one row per record.
func (w *XLSXWriter) Write(records []*model.MemberRecord) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	// Rename the default sheet rather than adding one, so the workbook
	// holds exactly one sheet.
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	if err := w.setRow(f, 1, model.FieldNames()); err != nil {
		return err
	}
	for i, rec := range records {
		if err := w.setRow(f, i+2, rec.Row()); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w.output)
	return err
}

// setRow writes one spreadsheet row (1-based) from string cells.
func (w *XLSXWriter) setRow(f *excelize.File, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return f.SetSheetRow(sheetName, cell, &values)
}
