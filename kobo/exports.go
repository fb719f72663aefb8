package kobo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ExportState is the client-side view of an export job's lifecycle:
// created -> pending -> ready | failed.
type ExportState string

const (
	ExportCreated ExportState = "created"
	ExportPending ExportState = "pending"
	ExportReady   ExportState = "ready"
	ExportFailed  ExportState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s ExportState) Terminal() bool {
	return s == ExportReady || s == ExportFailed
}

// exportState maps the server's task status onto ExportState.
func exportState(status string) ExportState {
	switch status {
	case "complete":
		return ExportReady
	case "error":
		return ExportFailed
	case "processing":
		return ExportPending
	case "created", "":
		return ExportCreated
	}
	return ExportPending
}

// ExportOptions configures a new export job.
type ExportOptions struct {
	// Type is "csv" or "xls". Empty means csv.
	Type          string
	IncludeLabels bool
}

// ExportResult is the outcome of an export request.
type ExportResult struct {
	Status      ExportState `json:"status"`
	DownloadURL string      `json:"download_url,omitempty"`
	Type        string      `json:"type,omitempty"`
	ExportUID   string      `json:"export_uid"`
	Messages    string      `json:"messages,omitempty"`
}

// ExportService creates export jobs and waits for their download URL.
type ExportService struct {
	client *Client
	poll   PollConfig
}

// NewExportService returns an ExportService. A zero poll uses
// DefaultExportPoll.
func NewExportService(c *Client, poll PollConfig) *ExportService {
	return &ExportService{client: c, poll: poll.orDefault(DefaultExportPoll)}
}

// ExportData creates an export job and polls it until it reaches a terminal
// state or the poll budget runs out. A job that fails is not retried; the
// caller must request a new export.
func (s *ExportService) ExportData(ctx context.Context, formUID string, opts ExportOptions) (*ExportResult, error) {
	formUID = strings.TrimSpace(formUID)
	if formUID == "" {
		return nil, invalidArgument("form uid is required")
	}
	exportType := strings.ToLower(strings.TrimSpace(opts.Type))
	if exportType == "" {
		exportType = "csv"
	}
	if exportType != "csv" && exportType != "xls" {
		return nil, invalidArgument("export type must be csv or xls, got %q", opts.Type)
	}

	lang := "_xml"
	if opts.IncludeLabels {
		lang = "_default"
	}
	settings := map[string]any{
		"type":                     exportType,
		"lang":                     lang,
		"hierarchy_in_labels":      opts.IncludeLabels,
		"fields_from_all_versions": true,
		"group_sep":                "/",
		"multiple_select":          "both",
	}

	st := newSteps("export_data")

	var created Document
	if err := s.client.postJSON(ctx, assetPath(formUID)+"exports/", settings, &created); err != nil {
		return nil, st.fail("create export", fmt.Errorf("exporting %s: %w", formUID, err))
	}
	exportUID := created.UID()
	if exportUID == "" {
		return nil, st.fail("create export", errors.New("server response carried no export uid"))
	}
	st.complete("create export")
	st.resource = exportUID

	// Some servers finish small exports synchronously.
	if res := exportResult(created, exportType); res.Status == ExportReady && res.DownloadURL != "" {
		return res, nil
	}

	var last *ExportResult
	err := poll(ctx, s.poll, func(ctx context.Context) (bool, error) {
		res, err := s.GetExport(ctx, formUID, exportUID)
		if err != nil {
			return false, err
		}
		if res.Type == "" {
			res.Type = exportType
		}
		last = res
		if res.Status == ExportReady && res.DownloadURL == "" {
			return false, nil
		}
		return res.Status.Terminal(), nil
	})
	if err != nil {
		return nil, st.fail("wait for export", err)
	}
	if last.Status == ExportFailed {
		return nil, st.fail("wait for export", fmt.Errorf("%w: %s", ErrExportFailed, last.Messages))
	}
	return last, nil
}

// GetExport reads the current state of an existing export job.
func (s *ExportService) GetExport(ctx context.Context, formUID, exportUID string) (*ExportResult, error) {
	formUID = strings.TrimSpace(formUID)
	exportUID = strings.TrimSpace(exportUID)
	if formUID == "" || exportUID == "" {
		return nil, invalidArgument("form uid and export uid are required")
	}

	var doc Document
	path := assetPath(formUID) + "exports/" + url.PathEscape(exportUID) + "/"
	if err := s.client.get(ctx, path, nil, &doc); err != nil {
		return nil, fmt.Errorf("getting export %s: %w", exportUID, err)
	}
	return exportResult(doc, ""), nil
}

func exportResult(d Document, exportType string) *ExportResult {
	res := &ExportResult{
		Status:    exportState(d.Status()),
		ExportUID: d.UID(),
		Type:      exportType,
	}
	if res.Status == ExportReady {
		res.DownloadURL = d.String("result")
	}
	if res.Status == ExportFailed {
		res.Messages = messages(d)
	}
	if settings, ok := d["data"].(map[string]any); ok && res.Type == "" {
		if t, ok := settings["type"].(string); ok {
			res.Type = t
		}
	}
	return res
}
