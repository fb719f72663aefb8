package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned by Err when the user quits the wizard early.
var ErrCancelled = errors.New("setup cancelled")

// WizardContext collects the answers of every step.
type WizardContext struct {
	Server string
	Token  string
	Tools  []string
}

// WizardModel is the bubbletea model that walks the user through each step.
type WizardModel struct {
	styles  *StyleSet
	steps   []Step
	current int
	ctx     *WizardContext
	width   int
	done    bool
	err     error
	version string
}

// NewWizardModel returns a wizard over steps rendered with theme.
func NewWizardModel(theme TermTheme, steps []Step, version string) WizardModel {
	return WizardModel{
		styles:  NewStyleSet(theme),
		steps:   steps,
		ctx:     &WizardContext{},
		width:   80,
		version: version,
	}
}

// Init starts the first step.
func (w WizardModel) Init() tea.Cmd {
	if len(w.steps) == 0 {
		return nil
	}
	return w.steps[0].Init()
}

func (w *WizardModel) advance() tea.Cmd {
	if w.current < len(w.steps) {
		w.steps[w.current].Apply(w.ctx)
	}

	w.current++
	if w.current >= len(w.steps) {
		w.done = true
		return tea.Quit
	}

	next := w.steps[w.current]
	if p, ok := next.(Preparer); ok {
		p.Prepare(w.ctx)
	}
	return next.Init()
}

// Update routes messages. Steps advance only by emitting StepCompleteMsg.
func (w WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		return w, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			w.err = ErrCancelled
			return w, tea.Quit
		}

	case StepBackMsg:
		if w.current > 0 {
			w.current--
			return w, w.steps[w.current].Init()
		}
		return w, nil

	case StepCompleteMsg:
		return w, w.advance()
	}

	if w.current < len(w.steps) {
		updated, cmd := w.steps[w.current].Update(msg)
		w.steps[w.current] = updated
		return w, cmd
	}
	return w, nil
}

// View renders the banner, progress and the active step.
func (w WizardModel) View() string {
	out := "\n" + RenderBanner(w.styles, w.version, w.width) + "\n"
	out += RenderProgress(w.steps, w.current, w.styles, w.width) + "\n"
	if w.current < len(w.steps) {
		out += w.steps[w.current].View(w.width)
	}
	return out + "\n"
}

// Context returns the answers collected so far.
func (w WizardModel) Context() *WizardContext { return w.ctx }

// Err reports why the wizard stopped, or nil.
func (w WizardModel) Err() error { return w.err }

// Done reports whether every step completed.
func (w WizardModel) Done() bool { return w.done }

// Styles exposes the style set so steps can share it.
func (w WizardModel) Styles() *StyleSet { return w.styles }
