package steps

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bbdaniels/kobo-mcp/internal/tui"
	"github.com/bbdaniels/kobo-mcp/internal/tui/components"
)

// ReviewStep shows what will be written. The caller writes the files once
// the wizard exits.
type ReviewStep struct {
	styles     *tui.StyleSet
	configPath string
	envPath    string
	summary    components.SummaryBox
	kbd        components.KbdHint
	complete   bool
}

func NewReviewStep(styles *tui.StyleSet, configPath, envPath string) *ReviewStep {
	kbd := components.NewKbdHint(styles.KbdKey, styles.KbdDesc)
	kbd.Bindings = components.ReviewHints()
	return &ReviewStep{
		styles:     styles,
		configPath: configPath,
		envPath:    envPath,
		kbd:        kbd,
	}
}

// Prepare builds the summary from the earlier answers.
func (s *ReviewStep) Prepare(ctx *tui.WizardContext) {
	tools := "all"
	if len(ctx.Tools) > 0 {
		tools = strings.Join(ctx.Tools, ", ")
	}
	s.summary = components.SummaryBox{
		Rows: []components.SummaryRow{
			{Key: "Server", Value: ctx.Server},
			{Key: "Token", Value: maskToken(ctx.Token)},
			{Key: "Tools", Value: tools},
			{Key: "Config", Value: s.configPath},
			{Key: "Secrets", Value: s.envPath},
		},
		KeyStyle:    s.styles.SummaryKey,
		ValueStyle:  s.styles.SummaryValue,
		BorderStyle: s.styles.BorderedBox,
	}
}

// maskToken keeps the last four characters so users can tell tokens apart.
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("•", len(token))
	}
	return strings.Repeat("•", 8) + token[len(token)-4:]
}

func (s *ReviewStep) Title() string { return "Review" }
func (s *ReviewStep) Icon() string  { return "📋" }

func (s *ReviewStep) Init() tea.Cmd {
	s.complete = false
	return nil
}

func (s *ReviewStep) Update(msg tea.Msg) (tui.Step, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if s.complete || !ok {
		return s, nil
	}
	switch key.String() {
	case "enter":
		s.complete = true
		return s, completeCmd
	case "backspace":
		return s, backCmd
	}
	return s, nil
}

func (s *ReviewStep) View(width int) string {
	return s.summary.View(width) + "\n\n" + s.kbd.View()
}

func (s *ReviewStep) Complete() bool  { return s.complete }
func (s *ReviewStep) Summary() string { return "confirmed" }

func (s *ReviewStep) Apply(*tui.WizardContext) {}
