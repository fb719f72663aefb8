package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Step is one screen of the setup wizard.
type Step interface {
	Title() string
	Icon() string
	Init() tea.Cmd
	Update(msg tea.Msg) (Step, tea.Cmd)
	View(width int) string
	Complete() bool
	// Summary is shown next to the step once it is collapsed.
	Summary() string
	// Apply copies the step's answers into ctx.
	Apply(ctx *WizardContext)
}

// Preparer is implemented by steps that need earlier answers before Init.
type Preparer interface {
	Prepare(ctx *WizardContext)
}

// RenderProgress renders finished steps with their summaries followed by the
// header of the active step.
func RenderProgress(steps []Step, current int, styles *StyleSet, width int) string {
	var b strings.Builder

	for i := 0; i < current && i < len(steps); i++ {
		fmt.Fprintf(&b, "  %s  %s\n", styles.StepBadgeComplete.Render("✓"), styles.PrimaryTxt.Bold(true).Render(steps[i].Title()))
		fmt.Fprintf(&b, "       %s\n\n", styles.SecondaryTxt.Render(steps[i].Summary()))
	}

	if current < len(steps) {
		num := fmt.Sprintf("%d", current+1)
		title := steps[current].Title()
		rule := max(width-12-lipgloss.Width(num)-lipgloss.Width(title), 2)
		fmt.Fprintf(&b, "  %s  %s%s\n",
			styles.StepBadgeActive.Render(num),
			styles.PrimaryTxt.Bold(true).Render(title),
			styles.DimTxt.Render(" "+strings.Repeat("─", rule)))
	}

	return b.String()
}
