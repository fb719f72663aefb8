package steps

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bbdaniels/kobo-mcp/internal/tui"
	"github.com/bbdaniels/kobo-mcp/internal/tui/components"
)

// ValidateTokenFunc checks token against server, typically with an
// authenticated request.
type ValidateTokenFunc func(ctx context.Context, server, token string) error

const validateTimeout = 15 * time.Second

// TokenStep collects the API token and verifies it before moving on.
type TokenStep struct {
	styles   *tui.StyleSet
	input    components.SecretInput
	validate ValidateTokenFunc
	server   string
	token    string
	complete bool
}

// NewTokenStep returns the token prompt. A nil validate accepts any
// non-empty token.
func NewTokenStep(styles *tui.StyleSet, validate ValidateTokenFunc) *TokenStep {
	return &TokenStep{
		styles:   styles,
		validate: validate,
		input:    components.NewSecretInput("API token (Account settings → Security)", componentStyles(styles)),
	}
}

// Prepare records the server chosen in the previous step.
func (s *TokenStep) Prepare(ctx *tui.WizardContext) {
	s.server = ctx.Server
}

func (s *TokenStep) Title() string { return "API Token" }
func (s *TokenStep) Icon() string  { return "🔑" }

func (s *TokenStep) Init() tea.Cmd {
	s.complete = false
	if s.input.Done() {
		s.input = components.NewSecretInput(s.input.Label, componentStyles(s.styles))
	}
	return s.input.Init()
}

func (s *TokenStep) Update(msg tea.Msg) (tui.Step, tea.Cmd) {
	if s.complete {
		return s, nil
	}

	switch msg := msg.(type) {
	case tui.ValidationResultMsg:
		if msg.Err != nil {
			s.input.SetState(components.SecretInvalid, msg.Err.Error())
			return s, nil
		}
		s.input.SetState(components.SecretValid, "")
		s.token = s.input.Value()
		s.complete = true
		return s, completeCmd

	case tea.KeyMsg:
		if s.input.State() == components.SecretChecking {
			return s, nil
		}
		if msg.String() == "backspace" && s.input.Value() == "" {
			return s, backCmd
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Done() && s.input.State() == components.SecretChecking {
		return s, s.check(s.server, s.input.Value())
	}
	return s, cmd
}

func (s *TokenStep) check(server, token string) tea.Cmd {
	validate := s.validate
	return func() tea.Msg {
		if validate == nil {
			return tui.ValidationResultMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
		defer cancel()
		return tui.ValidationResultMsg{Err: validate(ctx, server, token)}
	}
}

func (s *TokenStep) View(width int) string {
	out := ""
	if s.server != "" {
		out = "  " + s.styles.DimTxt.Render("Server: "+s.server) + "\n"
	}
	return out + s.input.View(width)
}

func (s *TokenStep) Complete() bool  { return s.complete }
func (s *TokenStep) Summary() string { return "verified" }

func (s *TokenStep) Apply(ctx *tui.WizardContext) { ctx.Token = s.token }
