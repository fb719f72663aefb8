package kobotools

import (
	"context"
	"encoding/json"

	"github.com/bbdaniels/kobo-mcp/tools"
)

type listFormsTool struct{ forms FormAPI }

type listFormsInput struct {
	Search string `json:"search,omitempty"`
}

func (t *listFormsTool) Name() string { return "list_forms" }
func (t *listFormsTool) Description() string {
	return "List the survey forms in the KoboToolbox account, optionally filtered by a name search"
}
func (t *listFormsTool) Category() tools.Category { return tools.CategoryForms }

func (t *listFormsTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"search": {"type": "string", "description": "Case-insensitive substring of the form name"}
		},
		"additionalProperties": false
	}`)
}

func (t *listFormsTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input listFormsInput
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	forms, err := t.forms.ListForms(ctx, input.Search)
	if err != nil {
		return "", err
	}
	return render(forms)
}

type getFormTool struct{ forms FormAPI }

type formUIDInput struct {
	FormUID string `json:"form_uid"`
}

func (t *getFormTool) Name() string { return "get_form" }
func (t *getFormTool) Description() string {
	return "Get one form by uid, including its survey content"
}
func (t *getFormTool) Category() tools.Category { return tools.CategoryForms }

func (t *getFormTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"form_uid": {"type": "string", "minLength": 1, "description": "Form (asset) uid"}
		},
		"required": ["form_uid"],
		"additionalProperties": false
	}`)
}

func (t *getFormTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input formUIDInput
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	form, err := t.forms.GetForm(ctx, input.FormUID)
	if err != nil {
		return "", err
	}
	return render(form)
}

type deployFormTool struct{ forms FormAPI }

type deployFormInput struct {
	FilePath string `json:"file_path"`
	FormName string `json:"form_name,omitempty"`
}

func (t *deployFormTool) Name() string { return "deploy_form" }
func (t *deployFormTool) Description() string {
	return "Upload a local XLSForm spreadsheet as a new form and deploy it. " +
		"If deployment fails after the upload, the undeployed form uid is reported in the error"
}
func (t *deployFormTool) Category() tools.Category { return tools.CategoryForms }

func (t *deployFormTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_path": {"type": "string", "minLength": 1, "description": "Path to the .xlsx or .xls XLSForm file"},
			"form_name": {"type": "string", "description": "Form name; defaults to the file name without extension"}
		},
		"required": ["file_path"],
		"additionalProperties": false
	}`)
}

func (t *deployFormTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input deployFormInput
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	res, err := t.forms.DeployForm(ctx, input.FilePath, input.FormName)
	if err != nil {
		return "", err
	}
	return render(res)
}

type replaceFormTool struct{ forms FormAPI }

type replaceFormInput struct {
	FormUID  string `json:"form_uid"`
	FilePath string `json:"file_path"`
}

func (t *replaceFormTool) Name() string { return "replace_form" }
func (t *replaceFormTool) Description() string {
	return "Replace the content of an existing form with a new XLSForm and redeploy it. " +
		"The uid and existing submissions are kept"
}
func (t *replaceFormTool) Category() tools.Category { return tools.CategoryForms }

func (t *replaceFormTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"form_uid": {"type": "string", "minLength": 1, "description": "Uid of the form to replace"},
			"file_path": {"type": "string", "minLength": 1, "description": "Path to the new XLSForm file"}
		},
		"required": ["form_uid", "file_path"],
		"additionalProperties": false
	}`)
}

func (t *replaceFormTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input replaceFormInput
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	res, err := t.forms.ReplaceForm(ctx, input.FormUID, input.FilePath)
	if err != nil {
		return "", err
	}
	return render(res)
}
