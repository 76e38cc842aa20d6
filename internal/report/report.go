// Package report renders scan results, either as log lines for batch runs
// or as display blocks for the web form.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/muhammadolammi/skillscan/internal/scan"
	"github.com/rs/zerolog"
)

func FormatPercentage(p float64) string {
	return fmt.Sprintf("%.2f", p)
}

// FormatSkills renders a matched-skill list the way it appears in logs.
func FormatSkills(list []string) string {
	return "[" + strings.Join(list, ", ") + "]"
}

type LogPresenter struct {
	logger zerolog.Logger
}

func NewLogPresenter(logger zerolog.Logger) *LogPresenter {
	return &LogPresenter{logger: logger}
}

// Present logs four INFO lines per resume: path, predefined count, matched
// count and matched skills.
func (p *LogPresenter) Present(r *scan.Report) {
	for _, entry := range r.Entries {
		l := p.logger.With().
			Str("scan_id", r.ID.String()).
			Str("path", entry.Path).
			Logger()

		l.Info().Msgf("Resume: %s", entry.Path)
		l.Info().Msgf("Number of Predefined Skills: %d", entry.Predefined)
		l.Info().Msgf("Number of Matching Skills: %d", entry.Matched())
		l.Info().
			Str("percentage", FormatPercentage(entry.Percentage())).
			Msgf("Matching Skills: %s", FormatSkills(entry.Skills))
	}
}

// Block is one resume's display data for the interactive page.
type Block struct {
	Name       string   `json:"name"`
	Predefined int      `json:"predefined_count"`
	Matched    int      `json:"matched_count"`
	Skills     []string `json:"matched_skills"`
	Percentage string   `json:"percentage"`
	Error      string   `json:"error,omitempty"`
}

// View turns a report into display blocks, naming each resume by its base
// file name since uploads live under a throwaway directory.
func View(r *scan.Report) []Block {
	blocks := make([]Block, 0, r.Len())
	for _, entry := range r.Entries {
		block := Block{
			Name:       filepath.Base(entry.Path),
			Predefined: entry.Predefined,
			Matched:    entry.Matched(),
			Skills:     entry.Skills,
			Percentage: FormatPercentage(entry.Percentage()),
		}
		if entry.Failed() {
			block.Error = "could not read this resume"
		}
		blocks = append(blocks, block)
	}
	return blocks
}
