package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SecretState is the validation state shown under a SecretInput.
type SecretState int

const (
	SecretEditing SecretState = iota
	SecretChecking
	SecretValid
	SecretInvalid
)

// SecretInput is a masked input whose value is checked asynchronously by
// the owning step.
type SecretInput struct {
	Label  string
	input  textinput.Model
	done   bool
	state  SecretState
	err    string
	styles Styles
	kbd    KbdHint
}

func NewSecretInput(label string, styles Styles) SecretInput {
	ti := textinput.New()
	ti.Placeholder = "paste token here"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 200
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Accent)
	ti.Focus()

	return SecretInput{
		Label:  label,
		input:  ti,
		styles: styles,
		kbd:    styles.hints(InputHints()),
	}
}

func (s SecretInput) Init() tea.Cmd { return textinput.Blink }

func (s SecretInput) Update(msg tea.Msg) (SecretInput, tea.Cmd) {
	if s.done {
		return s, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if s.Value() == "" {
			s.state = SecretInvalid
			s.err = "token is required"
			return s, nil
		}
		s.done = true
		s.state = SecretChecking
		s.err = ""
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.state = SecretEditing
	s.err = ""
	return s, cmd
}

func (s SecretInput) View(width int) string {
	w := boxWidth(width, 8)
	s.input.Width = w

	border := s.styles.box(s.styles.Accent)
	var status string
	switch s.state {
	case SecretChecking:
		status = s.styles.Hint.Render("… checking token")
	case SecretValid:
		border = s.styles.box(s.styles.Success)
		status = s.styles.fg(s.styles.Success).Render("✓ token accepted")
	case SecretInvalid:
		border = s.styles.box(s.styles.Error)
		status = s.styles.fg(s.styles.Error).Render("✗ " + s.err)
	}

	out := "\n  " + s.styles.Label.Render(s.Label) + "\n\n"
	out += "  " + border.Width(w).Render(s.input.View()) + "\n"
	if status != "" {
		out += "  " + status + "\n"
	}
	return out + "\n" + s.kbd.View()
}

func (s SecretInput) Done() bool { return s.done }

func (s SecretInput) Value() string { return strings.TrimSpace(s.input.Value()) }

// SetState records a validation outcome. Failure re-opens the input.
func (s *SecretInput) SetState(state SecretState, errMsg string) {
	s.state = state
	s.err = errMsg
	if state == SecretInvalid {
		s.done = false
	}
}

// State returns the current validation state.
func (s SecretInput) State() SecretState { return s.state }
