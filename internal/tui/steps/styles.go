package steps

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bbdaniels/kobo-mcp/internal/tui"
	"github.com/bbdaniels/kobo-mcp/internal/tui/components"
)

func componentStyles(s *tui.StyleSet) components.Styles {
	return components.Styles{
		Accent:    s.Theme.Accent,
		Success:   s.Theme.Success,
		Error:     s.Theme.Error,
		Primary:   s.Theme.Primary,
		Secondary: s.Theme.Secondary,
		Dim:       s.Theme.Dim,
		Border:    s.Theme.Border,
		Label:     s.AccentTxt,
		Hint:      s.DimTxt,
		KbdKey:    s.KbdKey,
		KbdDesc:   s.KbdDesc,
	}
}

func completeCmd() tea.Msg { return tui.StepCompleteMsg{} }

func backCmd() tea.Msg { return tui.StepBackMsg{} }
