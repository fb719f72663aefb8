package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SummaryRow is one key/value line of a SummaryBox.
type SummaryRow struct {
	Key   string
	Value string
}

// SummaryBox renders rows as a two column grid inside a border.
type SummaryBox struct {
	Rows        []SummaryRow
	KeyStyle    lipgloss.Style
	ValueStyle  lipgloss.Style
	BorderStyle lipgloss.Style
}

func (s SummaryBox) View(width int) string {
	var b strings.Builder
	for _, row := range s.Rows {
		fmt.Fprintf(&b, "  %s  %s\n", s.KeyStyle.Render(row.Key), s.ValueStyle.Render(row.Value))
	}
	return "  " + s.BorderStyle.Width(boxWidth(width, 8)).Render(strings.TrimRight(b.String(), "\n"))
}
