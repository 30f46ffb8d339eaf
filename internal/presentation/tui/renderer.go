// Package tui renders catalog data for terminals.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/verdant/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return PlainRenderer
	}
	return r.Render
}

// PlainRenderer returns markdown unchanged, for pipes and files.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}

// RendererFor picks glamour for terminals and plain markdown otherwise.
func RendererFor(f *os.File) Renderer {
	if IsTerminal(f) {
		return NewRenderer()
	}
	return PlainRenderer
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// PlantTable renders plants as a markdown table. Rows whose watering period came
// from enrichment are marked with a star.
func PlantTable(plants []domain.Plant, wateringDays map[string]int) string {
	if len(plants) == 0 {
		return "_No plants match._\n"
	}

	var b strings.Builder
	b.WriteString("| ID | Type | Water every |\n")
	b.WriteString("|----|------|-------------|\n")
	for _, p := range plants {
		mark := ""
		if _, ok := wateringDays[p.ID]; ok {
			mark = " ★"
		}
		fmt.Fprintf(&b, "| %s | %s | %s%s |\n", p.ID, escapeCell(p.Type), days(p.WateringPeriod), mark)
	}
	return b.String()
}

// StateSummary renders the status flags and error line of a state.
func StateSummary(s domain.State) string {
	var parts []string
	if s.Loading {
		parts = append(parts, "loading")
	}
	if s.Adding {
		parts = append(parts, "adding")
	}
	if s.PendingEnrichmentID != "" {
		parts = append(parts, "enriching "+s.PendingEnrichmentID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d plants**", len(s.Items))
	if len(parts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
	if s.Error != "" {
		fmt.Fprintf(&b, "\n> error: %s\n", s.Error)
	}
	return b.String()
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
