package kobo

import (
	"encoding/json"
	"strconv"
)

// Document is a loosely-typed JSON object as returned by the server. Only the
// fields this package inspects get typed accessors.
type Document map[string]any

// String returns the string at key, or "" if missing or not a string.
func (d Document) String(key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

// Int returns the integer at key. JSON numbers decode as float64 or
// json.Number depending on the decoder, so both are accepted.
func (d Document) Int(key string) int {
	switch v := d[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// UID returns the server-assigned identifier.
func (d Document) UID() string { return d.String("uid") }

// Status returns the "status" field used by import and export tasks.
func (d Document) Status() string { return d.String("status") }

// FormSummary is the projection of an asset returned by list and get.
type FormSummary struct {
	UID              string `json:"uid"`
	Name             string `json:"name"`
	AssetType        string `json:"asset_type,omitempty"`
	DeploymentStatus string `json:"deployment_status,omitempty"`
	SubmissionCount  int    `json:"submission_count"`
	DateCreated      string `json:"date_created,omitempty"`
	DateModified     string `json:"date_modified,omitempty"`
	Owner            string `json:"owner,omitempty"`
}

// Form is a FormSummary plus the survey definition.
type Form struct {
	FormSummary
	Content any `json:"content"`
}

func summarize(d Document) FormSummary {
	return FormSummary{
		UID:              d.UID(),
		Name:             d.String("name"),
		AssetType:        d.String("asset_type"),
		DeploymentStatus: d.String("deployment_status"),
		SubmissionCount:  d.Int("deployment__submission_count"),
		DateCreated:      d.String("date_created"),
		DateModified:     d.String("date_modified"),
		Owner:            d.String("owner__username"),
	}
}
