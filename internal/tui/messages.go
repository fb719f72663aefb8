package tui

// StepBackMsg asks the wizard to return to the previous step.
type StepBackMsg struct{}

// StepCompleteMsg is the only way a step hands control to the next one.
type StepCompleteMsg struct{}

// ValidationResultMsg carries the outcome of an asynchronous check such as
// verifying an API token against the server.
type ValidationResultMsg struct {
	Err error
}
