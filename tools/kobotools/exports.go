package kobotools

import (
	"context"
	"encoding/json"

	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/bbdaniels/kobo-mcp/tools"
)

type exportDataTool struct{ exports ExportAPI }

type exportDataInput struct {
	FormUID       string `json:"form_uid"`
	ExportType    string `json:"export_type,omitempty"`
	IncludeLabels *bool  `json:"include_labels,omitempty"`
}

func (t *exportDataTool) Name() string { return "export_data" }
func (t *exportDataTool) Description() string {
	return "Export all submissions of a form as CSV or XLS and return the download URL. " +
		"On timeout, pass the reported export uid to get_export to check again"
}
func (t *exportDataTool) Category() tools.Category { return tools.CategoryExports }

func (t *exportDataTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"form_uid": {"type": "string", "minLength": 1, "description": "Form (asset) uid"},
			"export_type": {"type": "string", "enum": ["csv", "xls"], "default": "csv", "description": "Export file format"},
			"include_labels": {"type": "boolean", "default": true, "description": "Use question labels instead of XML names"}
		},
		"required": ["form_uid"],
		"additionalProperties": false
	}`)
}

func (t *exportDataTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input exportDataInput
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	opts := kobo.ExportOptions{Type: input.ExportType, IncludeLabels: true}
	if input.IncludeLabels != nil {
		opts.IncludeLabels = *input.IncludeLabels
	}
	res, err := t.exports.ExportData(ctx, input.FormUID, opts)
	if err != nil {
		return "", err
	}
	return render(res)
}

type getExportTool struct{ exports ExportAPI }

type getExportInput struct {
	FormUID   string `json:"form_uid"`
	ExportUID string `json:"export_uid"`
}

func (t *getExportTool) Name() string { return "get_export" }
func (t *getExportTool) Description() string {
	return "Check the status of an existing export job and return its download URL once ready"
}
func (t *getExportTool) Category() tools.Category { return tools.CategoryExports }

func (t *getExportTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"form_uid": {"type": "string", "minLength": 1, "description": "Form (asset) uid"},
			"export_uid": {"type": "string", "minLength": 1, "description": "Export job uid"}
		},
		"required": ["form_uid", "export_uid"],
		"additionalProperties": false
	}`)
}

func (t *getExportTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input getExportInput
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	res, err := t.exports.GetExport(ctx, input.FormUID, input.ExportUID)
	if err != nil {
		return "", err
	}
	return render(res)
}
