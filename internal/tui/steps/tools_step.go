package steps

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bbdaniels/kobo-mcp/internal/tui"
	"github.com/bbdaniels/kobo-mcp/internal/tui/components"
)

// ToolInfo describes one tool offered for the allow-list.
type ToolInfo struct {
	Name        string
	Description string
}

// ToolsStep lets the user restrict which tools the server exposes.
// Leaving every box checked keeps the allow-list empty.
type ToolsStep struct {
	styles   *tui.StyleSet
	list     components.MultiSelect
	selected []string
	complete bool
}

func NewToolsStep(styles *tui.StyleSet, tools []ToolInfo) *ToolsStep {
	items := make([]components.MultiSelectItem, 0, len(tools))
	for _, t := range tools {
		items = append(items, components.MultiSelectItem{
			Label:       t.Name,
			Value:       t.Name,
			Description: t.Description,
			Checked:     true,
		})
	}
	list := components.NewMultiSelect(items, componentStyles(styles))
	list.RequireOne = true
	return &ToolsStep{styles: styles, list: list}
}

func (s *ToolsStep) Title() string { return "Tools" }
func (s *ToolsStep) Icon() string  { return "🧰" }

func (s *ToolsStep) Init() tea.Cmd {
	s.complete = false
	return s.list.Init()
}

func (s *ToolsStep) Update(msg tea.Msg) (tui.Step, tea.Cmd) {
	if s.complete {
		return s, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "backspace" {
		return s, backCmd
	}

	s.list, _ = s.list.Update(msg)
	if !s.list.Done() {
		return s, nil
	}
	s.selected = s.list.Values()
	if len(s.selected) == len(s.list.Items) {
		s.selected = nil
	}
	s.complete = true
	return s, completeCmd
}

func (s *ToolsStep) View(width int) string {
	return "  " + s.styles.DimTxt.Render("Unchecked tools are hidden from MCP clients. Press a to toggle all.") + "\n\n" + s.list.View(width)
}

func (s *ToolsStep) Complete() bool { return s.complete }

func (s *ToolsStep) Summary() string {
	if len(s.selected) == 0 {
		return fmt.Sprintf("all %d tools", len(s.list.Items))
	}
	return strings.Join(s.selected, ", ")
}

func (s *ToolsStep) Apply(ctx *tui.WizardContext) { ctx.Tools = s.selected }
