package components

import "github.com/charmbracelet/lipgloss"

// Styles is the subset of the wizard palette the components draw with.
type Styles struct {
	Accent    lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Dim       lipgloss.Color
	Border    lipgloss.Color

	Label   lipgloss.Style
	Hint    lipgloss.Style
	KbdKey  lipgloss.Style
	KbdDesc lipgloss.Style
}

func (s Styles) fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func (s Styles) box(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Padding(0, 1)
}

func (s Styles) hints(bindings []KeyBinding) KbdHint {
	k := NewKbdHint(s.KbdKey, s.KbdDesc)
	k.Bindings = bindings
	return k
}

// boxWidth clamps the width available to a bordered row.
func boxWidth(width, margin int) int {
	return max(width-margin, 30)
}
