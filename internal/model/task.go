package model

// FetchTask identifies one member detail page to fetch and extract.
// Tasks are produced by the directory enumerator in a fixed order;
// Index is the task's position in that order and determines the
// record's row in the output file regardless of which worker
// completes it first.
type FetchTask struct {
	// Index is the position in enumerator order, starting at 0.
	Index int

	// URL is the absolute member detail page URL.
	URL string

	// Category is the member category the listing page belongs to.
	Category string
}

// RunSummary aggregates statistics for one completed scrape run.
// It feeds the terminal summary, the optional Markdown report, and
// the history database.
type RunSummary struct {
	// Total is the number of members enumerated (and rows written).
	Total int

	// Failed is the number of all-placeholder rows.
	Failed int

	// ElapsedSeconds is the wall-clock duration of the fetch stage.
	ElapsedSeconds float64

	// FieldFilled maps each spreadsheet column name to the number of
	// rows where it holds a real value (not the placeholder).
	FieldFilled map[string]int

	// CategoryCounts maps each member category to its member count.
	CategoryCounts map[string]int
}

// NewRunSummary computes a summary over the given records.
func NewRunSummary(records []*MemberRecord, placeholder string, elapsedSeconds float64) *RunSummary {
	s := &RunSummary{
		Total:          len(records),
		ElapsedSeconds: elapsedSeconds,
		FieldFilled:    make(map[string]int, FieldCount),
		CategoryCounts: make(map[string]int),
	}

	names := FieldNames()
	for _, r := range records {
		if r.Failed {
			s.Failed++
		}
		if r.Category != "" {
			s.CategoryCounts[r.Category]++
		}
		for i, cell := range r.Row() {
			if cell != placeholder {
				s.FieldFilled[names[i]]++
			}
		}
	}
	return s
}

// FillRate returns the fraction of all cells holding a real value,
// in the range [0, 1]. Returns 0 for an empty run.
func (s *RunSummary) FillRate() float64 {
	if s.Total == 0 {
		return 0
	}
	filled := 0
	for _, n := range s.FieldFilled {
		filled += n
	}
	return float64(filled) / float64(s.Total*FieldCount)
}

// MembersPerSecond returns the average scrape throughput.
func (s *RunSummary) MembersPerSecond() float64 {
	if s.ElapsedSeconds <= 0 {
		return 0
	}
	return float64(s.Total) / s.ElapsedSeconds
}
