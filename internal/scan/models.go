package scan

import (
	"github.com/google/uuid"
)

// MatchResult is the outcome for one resume. Err is set when the resume
// could not be read; Skills is then empty.
type MatchResult struct {
	Path       string   `json:"path"`
	Skills     []string `json:"matched_skills"`
	Predefined int      `json:"predefined_count"`
	Err        error    `json:"-"`
}

func (r MatchResult) Matched() int { return len(r.Skills) }

func (r MatchResult) Failed() bool { return r.Err != nil }

// Percentage is Matched/Predefined*100, or 0 with no predefined skills.
func (r MatchResult) Percentage() float64 {
	return Percentage(r.Matched(), r.Predefined)
}

func Percentage(matched, predefined int) float64 {
	if predefined <= 0 {
		return 0
	}
	return float64(matched) / float64(predefined) * 100
}

// Report keeps results in discovery order.
type Report struct {
	ID      uuid.UUID     `json:"id"`
	Entries []MatchResult `json:"entries"`
}

// NewReport starts a report with a fresh scan ID.
func NewReport(entries ...MatchResult) *Report {
	return &Report{ID: uuid.New(), Entries: entries}
}

func (r *Report) Len() int { return len(r.Entries) }

func (r *Report) Get(path string) (MatchResult, bool) {
	for _, entry := range r.Entries {
		if entry.Path == path {
			return entry, true
		}
	}
	return MatchResult{}, false
}

func (r *Report) Paths() []string {
	paths := make([]string, len(r.Entries))
	for i, entry := range r.Entries {
		paths[i] = entry.Path
	}
	return paths
}

// Failures counts entries whose extraction failed.
func (r *Report) Failures() int {
	n := 0
	for _, entry := range r.Entries {
		if entry.Failed() {
			n++
		}
	}
	return n
}
