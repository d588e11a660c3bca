package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KENnotcode/taanscrape/internal/config"
	"github.com/KENnotcode/taanscrape/internal/model"
)

// Writer serializes a complete set of member records to its destination.
// Implementations exist for xlsx and csv output.
//
// Design decision: We use an interface so the scrape command can pick the
// format at runtime and tests can write to an in-memory buffer.
type Writer interface {
	// Write outputs the header row followed by one row per record.
	Write(records []*model.MemberRecord) error
}

// WriteFile writes all records to path in the given format.
//
// The write is atomic: records go to a temporary file in the same
// directory which is renamed over the target only after a successful
// write, so the target is either the complete previous file or the
// complete new one, never a truncated mix.
func WriteFile(path, format string, records []*model.MemberRecord) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	var w Writer
	switch format {
	case config.FormatCSV:
		w = NewCSVWriter(tmp)
	case config.FormatXLSX:
		w = NewXLSXWriter(tmp)
	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownFormat, format)
	}

	if err = w.Write(records); err != nil {
		return fmt.Errorf("write %s output: %w", format, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename output into place: %w", err)
	}
	return nil
}
