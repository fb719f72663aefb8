package kobotools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/bbdaniels/kobo-mcp/tools"
)

type getSubmissionsTool struct{ subs SubmissionAPI }

type getSubmissionsInput struct {
	FormUID string          `json:"form_uid"`
	Limit   *int            `json:"limit,omitempty"`
	Start   int             `json:"start,omitempty"`
	Query   json.RawMessage `json:"query,omitempty"`
}

func (t *getSubmissionsTool) Name() string { return "get_submissions" }
func (t *getSubmissionsTool) Description() string {
	return "Get one page of submissions for a form. Page through results by " +
		"advancing start by limit until start reaches count"
}
func (t *getSubmissionsTool) Category() tools.Category { return tools.CategorySubmissions }

func (t *getSubmissionsTool) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"type": "object",
		"properties": {
			"form_uid": {"type": "string", "minLength": 1, "description": "Form (asset) uid"},
			"limit": {"type": "integer", "minimum": 1, "maximum": %d, "default": %d, "description": "Page size"},
			"start": {"type": "integer", "minimum": 0, "default": 0, "description": "Offset of the first result"},
			"query": {
				"type": ["string", "object"],
				"description": "Filter as JSON, e.g. {\"_submission_time\": {\"$gt\": \"2024-01-01\"}}"
			}
		},
		"required": ["form_uid"],
		"additionalProperties": false
	}`, kobo.MaxSubmissionLimit, kobo.DefaultSubmissionLimit))
}

func (t *getSubmissionsTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input getSubmissionsInput
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}

	q := kobo.SubmissionQuery{Limit: kobo.DefaultSubmissionLimit, Start: input.Start}
	if input.Limit != nil {
		q.Limit = *input.Limit
	}
	filter, err := queryText(input.Query)
	if err != nil {
		return "", err
	}
	q.Filter = filter

	page, err := t.subs.GetSubmissions(ctx, input.FormUID, q)
	if err != nil {
		return "", err
	}
	return render(page)
}

// queryText accepts the filter either as JSON text or as an inline object.
func queryText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("parsing query: %w", err)
		}
		return s, nil
	}
	return string(raw), nil
}
