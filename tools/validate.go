package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/xeipuuv/gojsonschema"
)

// ErrUnknownTool is returned by Registry.Execute for an unregistered name.
var ErrUnknownTool = fmt.Errorf("%w: unknown tool", kobo.ErrInvalidArgument)

// ArgumentError reports arguments that do not satisfy a tool's InputSchema.
type ArgumentError struct {
	Tool     string
	Problems []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}

// Unwrap lets errors.Is match kobo.ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error { return kobo.ErrInvalidArgument }

func compileSchema(raw json.RawMessage) (*gojsonschema.Schema, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("empty input schema")
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compiling input schema: %w", err)
	}
	return schema, nil
}

func normalizeArgs(args json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage(`{}`)
	}
	return trimmed
}

func validateArgs(schema *gojsonschema.Schema, tool string, args json.RawMessage) error {
	if !json.Valid(args) {
		return &ArgumentError{Tool: tool, Problems: []string{"arguments are not valid JSON"}}
	}
	if schema == nil {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return fmt.Errorf("validating arguments for %s: %w", tool, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &ArgumentError{Tool: tool, Problems: problems}
}
