// Package kobotools implements the KoboToolbox tools: list_forms, get_form,
// get_submissions, deploy_form, replace_form, export_data and get_export.
package kobotools

import (
	"context"

	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/bbdaniels/kobo-mcp/tools"
)

// FormAPI is the subset of kobo.FormService the form tools need.
type FormAPI interface {
	ListForms(ctx context.Context, search string) ([]kobo.FormSummary, error)
	GetForm(ctx context.Context, uid string) (*kobo.Form, error)
	DeployForm(ctx context.Context, filePath, name string) (*kobo.DeployResult, error)
	ReplaceForm(ctx context.Context, uid, filePath string) (*kobo.ReplaceResult, error)
}

// SubmissionAPI is the subset of kobo.SubmissionService the submission tool needs.
type SubmissionAPI interface {
	GetSubmissions(ctx context.Context, formUID string, q kobo.SubmissionQuery) (*kobo.SubmissionPage, error)
}

// ExportAPI is the subset of kobo.ExportService the export tools need.
type ExportAPI interface {
	ExportData(ctx context.Context, formUID string, opts kobo.ExportOptions) (*kobo.ExportResult, error)
	GetExport(ctx context.Context, formUID, exportUID string) (*kobo.ExportResult, error)
}

// Backend holds the operation groups the tools delegate to.
type Backend struct {
	Forms       FormAPI
	Submissions SubmissionAPI
	Exports     ExportAPI
}

// NewBackend adapts kobo.Services to a Backend.
func NewBackend(s *kobo.Services) Backend {
	return Backend{Forms: s.Forms, Submissions: s.Submissions, Exports: s.Exports}
}

// All returns all KoboToolbox tools bound to b.
func All(b Backend) []tools.Tool {
	return []tools.Tool{
		&listFormsTool{forms: b.Forms},
		&getFormTool{forms: b.Forms},
		&getSubmissionsTool{subs: b.Submissions},
		&deployFormTool{forms: b.Forms},
		&replaceFormTool{forms: b.Forms},
		&exportDataTool{exports: b.Exports},
		&getExportTool{exports: b.Exports},
	}
}

// RegisterAll registers all KoboToolbox tools with the given registry.
func RegisterAll(reg *tools.Registry, b Backend) error {
	for _, t := range All(b) {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the names of all tools in registration order.
func Names() []string {
	all := All(Backend{})
	names := make([]string, 0, len(all))
	for _, t := range all {
		names = append(names, t.Name())
	}
	return names
}

// GetByName returns an unbound tool by name, or nil if not found. The result
// is only useful for its metadata.
func GetByName(name string) tools.Tool {
	for _, t := range All(Backend{}) {
		if t.Name() == name {
			return t
		}
	}
	return nil
}
