package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TextInput wraps bubbles/textinput with a label, border and validation.
type TextInput struct {
	Label    string
	input    textinput.Model
	done     bool
	err      string
	validate func(string) error
	styles   Styles
	kbd      KbdHint
}

// NewTextInput returns a focused input. validate runs on enter and may be nil.
func NewTextInput(label, placeholder string, validate func(string) error, styles Styles) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Accent)
	ti.Focus()

	return TextInput{
		Label:    label,
		input:    ti,
		validate: validate,
		styles:   styles,
		kbd:      styles.hints(InputHints()),
	}
}

func (t TextInput) Init() tea.Cmd { return textinput.Blink }

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.done {
		return t, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if t.validate != nil {
			if err := t.validate(t.Value()); err != nil {
				t.err = err.Error()
				return t, nil
			}
		}
		t.done = true
		t.err = ""
		return t, nil
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	t.err = ""
	return t, cmd
}

func (t TextInput) View(width int) string {
	w := boxWidth(width, 8)
	t.input.Width = w

	out := "\n  " + t.styles.Label.Render(t.Label) + "\n\n"
	out += "  " + t.styles.box(t.styles.Accent).Width(w).Render(t.input.View()) + "\n"
	if t.err != "" {
		out += "  " + t.styles.fg(t.styles.Error).Render("✗ "+t.err) + "\n"
	}
	return out + "\n" + t.kbd.View()
}

func (t TextInput) Done() bool { return t.done }

// Value returns the trimmed input.
func (t TextInput) Value() string { return strings.TrimSpace(t.input.Value()) }

func (t *TextInput) SetValue(v string) { t.input.SetValue(v) }
