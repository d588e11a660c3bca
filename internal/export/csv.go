package export

import (
	"encoding/csv"
	"io"

	"github.com/KENnotcode/taanscrape/internal/model"
)

// CSVWriter outputs records as RFC 4180 CSV with the fixed header row.
//
// Design decision: We use encoding/csv rather than hand-formatting because
// member data contains commas and quotes (addresses, organization names)
// and the package handles quoting correctly.
type CSVWriter struct {
	output io.Writer
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{output: output}
}

// Write outputs the header row followed by one row per record.
func (w *CSVWriter) Write(records []*model.MemberRecord) error {
	cw := csv.NewWriter(w.output)

	if err := cw.Write(model.FieldNames()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.Row()); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
