package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeyBinding is one key and what it does.
type KeyBinding struct {
	Key  string
	Desc string
}

// KbdHint renders a row of key bindings under a component.
type KbdHint struct {
	Bindings  []KeyBinding
	KeyStyle  lipgloss.Style
	DescStyle lipgloss.Style
}

// NewKbdHint returns an empty hint bar.
func NewKbdHint(keyStyle, descStyle lipgloss.Style) KbdHint {
	return KbdHint{KeyStyle: keyStyle, DescStyle: descStyle}
}

// View renders the bindings.
func (k KbdHint) View() string {
	parts := make([]string, 0, len(k.Bindings))
	for _, b := range k.Bindings {
		parts = append(parts, k.KeyStyle.Render(b.Key)+" "+k.DescStyle.Render(b.Desc))
	}
	return "  " + strings.Join(parts, "    ")
}

func SelectHints() []KeyBinding {
	return []KeyBinding{{"↑↓", "navigate"}, {"⏎", "select"}, {"esc", "quit"}}
}

func MultiSelectHints() []KeyBinding {
	return []KeyBinding{{"↑↓", "navigate"}, {"space", "toggle"}, {"⏎", "confirm"}, {"esc", "quit"}}
}

func InputHints() []KeyBinding {
	return []KeyBinding{{"⏎", "submit"}, {"esc", "quit"}}
}

func ReviewHints() []KeyBinding {
	return []KeyBinding{{"⏎", "write files"}, {"backspace", "back"}, {"esc", "quit"}}
}
