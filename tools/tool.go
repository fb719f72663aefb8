// Package tools provides the registry of operations exposed to an assistant.
// Each tool has a fixed JSON Schema for its arguments and returns a JSON
// document as text.
package tools

import (
	"context"
	"encoding/json"
)

// Category groups tools by the part of the API they touch.
type Category string

const (
	CategoryForms       Category = "forms"
	CategorySubmissions Category = "submissions"
	CategoryExports     Category = "exports"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// Name returns the unique tool name.
	Name() string
	// Description returns a human-readable description of the tool.
	Description() string
	// Category returns the tool's category.
	Category() Category
	// InputSchema returns the JSON Schema for the tool's input parameters.
	InputSchema() json.RawMessage
	// Execute runs the tool with the given JSON arguments.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Definition is the serializable description of a tool, as printed by
// "tool describe" and advertised over MCP.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// ToDefinition converts a Tool to its Definition.
func ToDefinition(t Tool) Definition {
	return Definition{
		Name:        t.Name(),
		Description: t.Description(),
		Category:    t.Category(),
		InputSchema: t.InputSchema(),
	}
}
