package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MultiSelectItem is one checkbox in a MultiSelect.
type MultiSelectItem struct {
	Label       string
	Value       string
	Description string
	Checked     bool
}

// MultiSelect is a checkbox list toggled with space and confirmed with enter.
type MultiSelect struct {
	Items  []MultiSelectItem
	cursor int
	done   bool
	err    string
	styles Styles
	kbd    KbdHint

	// RequireOne rejects enter while nothing is checked.
	RequireOne bool
}

func NewMultiSelect(items []MultiSelectItem, styles Styles) MultiSelect {
	return MultiSelect{
		Items:  items,
		styles: styles,
		kbd:    styles.hints(MultiSelectHints()),
	}
}

// Init re-arms the list after back navigation.
func (m *MultiSelect) Init() tea.Cmd {
	m.done = false
	return nil
}

func (m MultiSelect) Update(msg tea.Msg) (MultiSelect, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if m.done || !ok {
		return m, nil
	}
	m.err = ""
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.Items)-1 {
			m.cursor++
		}
	case " ":
		if len(m.Items) > 0 {
			m.Items[m.cursor].Checked = !m.Items[m.cursor].Checked
		}
	case "a":
		all := len(m.Values()) != len(m.Items)
		for i := range m.Items {
			m.Items[i].Checked = all
		}
	case "enter":
		if m.RequireOne && len(m.Values()) == 0 {
			m.err = "select at least one"
			return m, nil
		}
		m.done = true
	}
	return m, nil
}

func (m MultiSelect) View(width int) string {
	w := boxWidth(width, 6)
	var b strings.Builder

	for i, item := range m.Items {
		active := i == m.cursor
		check := m.styles.fg(m.styles.Dim).Render("☐")
		if item.Checked {
			check = m.styles.fg(m.styles.Accent).Render("☑")
		}
		label := m.styles.fg(m.styles.Secondary).Render(item.Label)
		border := m.styles.box(m.styles.Border)
		if active {
			label = m.styles.fg(m.styles.Primary).Bold(true).Render(item.Label)
			border = m.styles.box(m.styles.Accent)
		}

		head := "  " + label
		content := head + strings.Repeat(" ", max(w-lipgloss.Width(head)-4, 1)) + check
		if active && item.Description != "" {
			content += "\n    " + m.styles.fg(m.styles.Secondary).Render(item.Description)
		}
		b.WriteString("  " + border.Width(w).Render(content) + "\n")
	}
	if m.err != "" {
		b.WriteString("  " + m.styles.fg(m.styles.Error).Render("✗ "+m.err) + "\n")
	}

	return b.String() + "\n" + m.kbd.View()
}

func (m MultiSelect) Done() bool { return m.done }

// Values returns the checked values in list order.
func (m MultiSelect) Values() []string {
	var out []string
	for _, item := range m.Items {
		if item.Checked {
			out = append(out, item.Value)
		}
	}
	return out
}
