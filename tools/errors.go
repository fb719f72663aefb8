package tools

import (
	"encoding/json"
	"errors"

	"github.com/bbdaniels/kobo-mcp/kobo"
)

// ErrorDetail is the body of the JSON error payload returned to the assistant.
type ErrorDetail struct {
	Kind           kobo.Kind `json:"kind"`
	Message        string    `json:"message"`
	Status         int       `json:"status,omitempty"`
	Step           int       `json:"step,omitempty"`
	StepName       string    `json:"step_name,omitempty"`
	CompletedSteps []string  `json:"completed_steps,omitempty"`
	Resource       string    `json:"resource,omitempty"`
	Problems       []string  `json:"problems,omitempty"`
}

// NewErrorDetail classifies err and extracts whatever structure it carries.
func NewErrorDetail(err error) ErrorDetail {
	d := ErrorDetail{Kind: kobo.KindOf(err), Message: err.Error()}

	var apiErr *kobo.APIError
	if errors.As(err, &apiErr) {
		d.Status = apiErr.Status
	}
	var stepErr *kobo.StepError
	if errors.As(err, &stepErr) {
		d.Step = stepErr.Step
		d.StepName = stepErr.Name
		d.CompletedSteps = stepErr.Completed
		d.Resource = stepErr.Resource
	}
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		d.Problems = argErr.Problems
	}
	return d
}

// ErrorJSON renders err as {"error": {...}}.
func ErrorJSON(err error) string {
	payload := struct {
		Error ErrorDetail `json:"error"`
	}{NewErrorDetail(err)}
	data, _ := json.MarshalIndent(payload, "", "  ")
	return string(data)
}
