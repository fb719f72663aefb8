package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SingleSelectItem is one choice in a SingleSelect.
type SingleSelectItem struct {
	Label       string
	Value       string
	Description string
	Icon        string
}

// SingleSelect is a radio list confirmed with enter.
type SingleSelect struct {
	Items    []SingleSelectItem
	cursor   int
	selected int
	done     bool
	styles   Styles
	kbd      KbdHint
}

// NewSingleSelect returns a list with the cursor on the first item.
func NewSingleSelect(items []SingleSelectItem, styles Styles) SingleSelect {
	return SingleSelect{
		Items:    items,
		selected: -1,
		styles:   styles,
		kbd:      styles.hints(SelectHints()),
	}
}

// Init re-arms the list after back navigation.
func (s *SingleSelect) Init() tea.Cmd {
	s.done = false
	return nil
}

func (s SingleSelect) Update(msg tea.Msg) (SingleSelect, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if s.done || !ok {
		return s, nil
	}
	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.Items)-1 {
			s.cursor++
		}
	case "enter":
		s.selected = s.cursor
		s.done = true
	}
	return s, nil
}

func (s SingleSelect) View(width int) string {
	w := boxWidth(width, 6)
	var b strings.Builder

	for i, item := range s.Items {
		active := i == s.cursor
		radio := s.styles.fg(s.styles.Dim).Render("○")
		label := s.styles.fg(s.styles.Secondary).Render(item.Label)
		border := s.styles.box(s.styles.Border)
		if active {
			radio = s.styles.fg(s.styles.Accent).Render("◉")
			label = s.styles.fg(s.styles.Primary).Bold(true).Render(item.Label)
			border = s.styles.box(s.styles.Accent)
		}

		head := "  " + item.Icon + "  " + label
		content := head + strings.Repeat(" ", max(w-lipgloss.Width(head)-4, 1)) + radio
		if active && item.Description != "" {
			content += "\n      " + s.styles.fg(s.styles.Secondary).Render(item.Description)
		}
		b.WriteString("  " + border.Width(w).Render(content) + "\n")
	}

	return b.String() + "\n" + s.kbd.View()
}

func (s SingleSelect) Done() bool { return s.done }

// Value returns the chosen item's value, or "" before a choice is made.
func (s SingleSelect) Value() string {
	if item := s.SelectedItem(); item != nil {
		return item.Value
	}
	return ""
}

// SelectedItem returns the chosen item or nil.
func (s SingleSelect) SelectedItem() *SingleSelectItem {
	if s.selected < 0 || s.selected >= len(s.Items) {
		return nil
	}
	return &s.Items[s.selected]
}
