package steps

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bbdaniels/kobo-mcp/internal/tui"
	"github.com/bbdaniels/kobo-mcp/internal/tui/components"
	"github.com/bbdaniels/kobo-mcp/kobo"
)

type serverPhase int

const (
	serverSelectPhase serverPhase = iota
	serverCustomPhase
)

// ServerStep asks which KoboToolbox deployment to talk to.
type ServerStep struct {
	styles   *tui.StyleSet
	phase    serverPhase
	selector components.SingleSelect
	custom   components.TextInput
	server   string
	complete bool
}

func NewServerStep(styles *tui.StyleSet) *ServerStep {
	items := []components.SingleSelectItem{
		{Label: "Global server", Value: kobo.DefaultServer, Description: "kf.kobotoolbox.org", Icon: "🌍"},
		{Label: "EU server", Value: kobo.EUServer, Description: "eu.kobotoolbox.org", Icon: "🇪🇺"},
		{Label: "Self-hosted", Value: "custom", Description: "Your own KoboToolbox URL", Icon: "🏠"},
	}
	return &ServerStep{
		styles:   styles,
		selector: components.NewSingleSelect(items, componentStyles(styles)),
	}
}

func (s *ServerStep) Title() string { return "KoboToolbox Server" }
func (s *ServerStep) Icon() string  { return "🌐" }

func (s *ServerStep) Init() tea.Cmd {
	s.complete = false
	s.phase = serverSelectPhase
	return s.selector.Init()
}

func (s *ServerStep) Update(msg tea.Msg) (tui.Step, tea.Cmd) {
	if s.complete {
		return s, nil
	}

	if s.phase == serverCustomPhase {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "backspace" && s.custom.Value() == "" {
			s.phase = serverSelectPhase
			return s, s.selector.Init()
		}
		var cmd tea.Cmd
		s.custom, cmd = s.custom.Update(msg)
		if s.custom.Done() {
			s.server, _ = kobo.NormalizeServer(s.custom.Value())
			s.complete = true
			return s, completeCmd
		}
		return s, cmd
	}

	s.selector, _ = s.selector.Update(msg)
	if !s.selector.Done() {
		return s, nil
	}
	if v := s.selector.Value(); v != "custom" {
		s.server = v
		s.complete = true
		return s, completeCmd
	}

	s.phase = serverCustomPhase
	s.custom = components.NewTextInput("Server URL", "https://kobo.example.org", validateServer, componentStyles(s.styles))
	return s, s.custom.Init()
}

func validateServer(v string) error {
	_, err := kobo.NormalizeServer(v)
	return err
}

func (s *ServerStep) View(width int) string {
	if s.phase == serverCustomPhase {
		return s.custom.View(width)
	}
	return s.selector.View(width)
}

func (s *ServerStep) Complete() bool  { return s.complete }
func (s *ServerStep) Summary() string { return s.server }

func (s *ServerStep) Apply(ctx *tui.WizardContext) { ctx.Server = s.server }
