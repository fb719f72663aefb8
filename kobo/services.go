package kobo

// Services bundles the operation groups built over one Client.
type Services struct {
	Client      *Client
	Forms       *FormService
	Submissions *SubmissionService
	Exports     *ExportService
}

// ServiceConfig holds the poll budgets for the multi-step operations.
type ServiceConfig struct {
	ExportPoll PollConfig
	ImportPoll PollConfig
}

// NewServices builds all operation groups over c.
func NewServices(c *Client, cfg ServiceConfig) *Services {
	return &Services{
		Client:      c,
		Forms:       NewFormService(c, cfg.ImportPoll),
		Submissions: NewSubmissionService(c),
		Exports:     NewExportService(c, cfg.ExportPoll),
	}
}
