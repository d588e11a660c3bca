package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/KENnotcode/taanscrape/internal/model"
)

// SummaryWriter renders the data-quality summary of a run as GitHub
// Flavored Markdown: run totals, category breakdown, and per-field fill
// rates.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables without hand-assembled pipes.
type SummaryWriter struct {
	output io.Writer

	// now supplies the report timestamp; overridable in tests.
	now func() time.Time
}

// SummaryWriterOption configures a SummaryWriter.
type SummaryWriterOption func(*SummaryWriter)

// WithClock sets the time source for the report timestamp.
func WithClock(now func() time.Time) SummaryWriterOption {
	return func(w *SummaryWriter) {
		w.now = now
	}
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer, opts ...SummaryWriterOption) *SummaryWriter {
	w := &SummaryWriter{
		output: output,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the summary.
func (w *SummaryWriter) Write(s *model.RunSummary) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("TAAN Scrape Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Date", w.now().Format("2006-01-02 15:04:05 MST")},
			{"Members", strconv.Itoa(s.Total)},
			{"Failed (placeholder rows)", strconv.Itoa(s.Failed)},
			{"Elapsed", fmt.Sprintf("%.1fs", s.ElapsedSeconds)},
			{"Rate", fmt.Sprintf("%.2f members/sec", s.MembersPerSecond())},
			{"Data fill rate", fmt.Sprintf("%.1f%%", s.FillRate()*100)},
		},
	})
	md.PlainText("")

	if len(s.CategoryCounts) > 0 {
		md.H2("Members by Category")
		md.PlainText("")
		rows := make([][]string, 0, len(s.CategoryCounts))
		for _, cat := range []string{model.CategoryGeneral, model.CategoryAssociate, model.CategoryRegional} {
			if n, ok := s.CategoryCounts[cat]; ok {
				rows = append(rows, []string{cat, strconv.Itoa(n)})
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Category", "Members"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	md.H2("Field Fill Rates")
	md.PlainText("")
	fieldRows := make([][]string, 0, model.FieldCount)
	for _, name := range model.FieldNames() {
		filled := s.FieldFilled[name]
		rate := 0.0
		if s.Total > 0 {
			rate = float64(filled) / float64(s.Total) * 100
		}
		fieldRows = append(fieldRows, []string{
			name,
			fmt.Sprintf("%d/%d", filled, s.Total),
			fmt.Sprintf("%.1f%%", rate),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Filled", "Rate"},
		Rows:   fieldRows,
	})

	return md.Build()
}
