package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bbdaniels/kobo-mcp/kobo"
)

type echoTool struct {
	name   string
	schema string
	got    json.RawMessage
}

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return "echoes its arguments" }
func (t *echoTool) Category() Category  { return CategoryForms }
func (t *echoTool) InputSchema() json.RawMessage {
	if t.schema != "" {
		return json.RawMessage(t.schema)
	}
	return json.RawMessage(`{
		"type": "object",
		"properties": {"form_uid": {"type": "string", "minLength": 1}},
		"required": ["form_uid"],
		"additionalProperties": false
	}`)
}
func (t *echoTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	t.got = args
	return string(args), nil
}

func TestRegistry_RegisterAndList(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"get_form", "export_data", "list_forms"} {
		if err := reg.Register(&echoTool{name: name}); err != nil {
			t.Fatalf("Register(%s) error: %v", name, err)
		}
	}

	if err := reg.Register(&echoTool{name: "get_form"}); err == nil {
		t.Error("expected duplicate registration error")
	}

	got := reg.List()
	want := []string{"export_data", "get_form", "list_forms"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("List: got %v, want %v", got, want)
	}

	defs := reg.Definitions()
	if len(defs) != 3 || defs[0].Name != "export_data" || defs[0].Category != CategoryForms {
		t.Errorf("Definitions: %+v", defs)
	}
}

func TestRegistry_RejectsBadSchema(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(&echoTool{name: "broken", schema: `{"type": 12}`})
	if err == nil {
		t.Fatal("expected schema compile error")
	}
	if reg.Get("broken") != nil {
		t.Error("tool with bad schema should not be registered")
	}
}

func TestRegistry_Execute(t *testing.T) {
	reg := NewRegistry()
	tool := &echoTool{name: "get_form"}
	if err := reg.Register(tool); err != nil {
		t.Fatal(err)
	}

	out, err := reg.Execute(context.Background(), "get_form", json.RawMessage(`{"form_uid":"a1"}`))
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if out != `{"form_uid":"a1"}` {
		t.Errorf("output: got %q", out)
	}
}

func TestRegistry_ExecuteValidation(t *testing.T) {
	reg := NewRegistry()
	tool := &echoTool{name: "get_form"}
	if err := reg.Register(tool); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args string
	}{
		{"missing required", `{}`},
		{"empty args", ``},
		{"wrong type", `{"form_uid": 7}`},
		{"extra field", `{"form_uid": "a1", "uid": "a1"}`},
		{"not json", `{form_uid`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool.got = nil
			_, err := reg.Execute(context.Background(), "get_form", json.RawMessage(tt.args))
			var argErr *ArgumentError
			if !errors.As(err, &argErr) {
				t.Fatalf("expected *ArgumentError, got %v", err)
			}
			if len(argErr.Problems) == 0 {
				t.Error("expected at least one problem")
			}
			if kobo.KindOf(err) != kobo.KindInvalidArgument {
				t.Errorf("kind: got %q", kobo.KindOf(err))
			}
			if tool.got != nil {
				t.Error("tool must not run on invalid arguments")
			}
		})
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	_, err := NewRegistry().Execute(context.Background(), "drop_database", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if kobo.KindOf(err) != kobo.KindInvalidArgument {
		t.Errorf("kind: got %q", kobo.KindOf(err))
	}
}

func TestRegistry_Filter(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"list_forms", "get_form", "deploy_form"} {
		if err := reg.Register(&echoTool{name: name}); err != nil {
			t.Fatal(err)
		}
	}

	filtered := reg.Filter([]string{"list_forms", "get_form", "missing"})
	if got := filtered.List(); len(got) != 2 {
		t.Errorf("Filter: got %v", got)
	}
	if filtered.Get("deploy_form") != nil {
		t.Error("deploy_form should be filtered out")
	}
	if _, err := filtered.Execute(context.Background(), "get_form", json.RawMessage(`{}`)); err == nil {
		t.Error("filtered registry should keep argument validation")
	}

	if got := reg.Filter(nil).List(); len(got) != 3 {
		t.Errorf("empty allow-list should keep all tools, got %v", got)
	}
}

func TestErrorJSON(t *testing.T) {
	stepErr := &kobo.StepError{
		Op:        "deploy_form",
		Step:      2,
		Name:      "deploy",
		Completed: []string{"upload asset"},
		Resource:  "aXyz",
		Err:       &kobo.APIError{Status: 500, Method: "POST", Path: "/api/v2/assets/aXyz/deployment/", Detail: "boom"},
	}

	var payload struct {
		Error ErrorDetail `json:"error"`
	}
	if err := json.Unmarshal([]byte(ErrorJSON(stepErr)), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	got := payload.Error
	if got.Kind != kobo.KindPartialFailure || got.Status != 500 || got.Step != 2 || got.Resource != "aXyz" {
		t.Errorf("detail: %+v", got)
	}
	if len(got.CompletedSteps) != 1 || got.CompletedSteps[0] != "upload asset" {
		t.Errorf("completed steps: %v", got.CompletedSteps)
	}

	notFound := fmt.Errorf("getting form x: %w", &kobo.APIError{Status: 404})
	if d := NewErrorDetail(notFound); d.Kind != kobo.KindNotFound || d.Status != 404 || d.Step != 0 {
		t.Errorf("not found detail: %+v", d)
	}
}
