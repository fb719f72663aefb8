package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/bbdaniels/kobo-mcp/internal/kobotest"
	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/bbdaniels/kobo-mcp/runtime"
	"github.com/bbdaniels/kobo-mcp/tools"
	"github.com/bbdaniels/kobo-mcp/tools/kobotools"
	"github.com/mark3labs/mcp-go/mcp"
)

type rpcResult struct {
	Result struct {
		Tools []struct {
			Name        string          `json:"name"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, srv *kobotest.Server, allow []string) *Server {
	t.Helper()
	c, err := kobo.NewClient(kobo.Credentials{ServerURL: srv.URL, Token: kobotest.Token})
	if err != nil {
		t.Fatal(err)
	}
	poll := kobo.PollConfig{Attempts: 5, Interval: time.Millisecond}
	svcs := kobo.NewServices(c, kobo.ServiceConfig{ExportPoll: poll, ImportPoll: poll})

	reg := tools.NewRegistry()
	if err := kobotools.RegisterAll(reg, kobotools.NewBackend(svcs)); err != nil {
		t.Fatal(err)
	}
	reg = reg.Filter(allow)
	return New(reg, runtime.NewInvoker(reg, nil), "test", nil)
}

var nextID = 0

func send(t *testing.T, s *Server, method string, params any) rpcResult {
	t.Helper()
	nextID++
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      nextID,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		t.Fatal(err)
	}
	resp := s.MCP().HandleMessage(context.Background(), msg)
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("encoding response: %v", err)
	}
	var out rpcResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decoding response %s: %v", data, err)
	}
	if out.Error != nil {
		t.Fatalf("%s: rpc error: %s", method, out.Error.Message)
	}
	return out
}

func initialize(t *testing.T, s *Server) {
	t.Helper()
	send(t, s, "initialize", map[string]any{
		"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "0"},
	})
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, kobotest.NewServer(t), nil)
	initialize(t, s)

	res := send(t, s, "tools/list", map[string]any{})
	var names []string
	for _, tool := range res.Result.Tools {
		names = append(names, tool.Name)
		if !strings.Contains(string(tool.InputSchema), `"type"`) {
			t.Errorf("%s: schema not advertised: %s", tool.Name, tool.InputSchema)
		}
	}
	sort.Strings(names)
	want := []string{"deploy_form", "export_data", "get_export", "get_form", "get_submissions", "list_forms", "replace_form"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("tools: got %v, want %v", names, want)
	}
}

func TestToolsList_AllowList(t *testing.T) {
	s := newTestServer(t, kobotest.NewServer(t), []string{"list_forms", "get_form"})
	initialize(t, s)

	res := send(t, s, "tools/list", map[string]any{})
	if len(res.Result.Tools) != 2 {
		t.Errorf("expected 2 tools, got %d", len(res.Result.Tools))
	}
}

func TestToolsCall(t *testing.T) {
	srv := kobotest.NewServer(t)
	uid := srv.AddForm("household", 2)
	s := newTestServer(t, srv, nil)
	initialize(t, s)

	res := send(t, s, "tools/call", map[string]any{
		"name":      "get_submissions",
		"arguments": map[string]any{"form_uid": uid, "limit": 1},
	})
	if res.Result.IsError || len(res.Result.Content) != 1 {
		t.Fatalf("result: %+v", res.Result)
	}
	var page struct {
		Count   int              `json:"count"`
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal([]byte(res.Result.Content[0].Text), &page); err != nil {
		t.Fatalf("text is not JSON: %v", err)
	}
	if page.Count != 2 || len(page.Results) != 1 {
		t.Errorf("page: %+v", page)
	}
}

func TestToolsCall_ErrorResult(t *testing.T) {
	s := newTestServer(t, kobotest.NewServer(t), nil)
	initialize(t, s)

	res := send(t, s, "tools/call", map[string]any{
		"name":      "get_form",
		"arguments": map[string]any{"form_uid": "nonexistent"},
	})
	if !res.Result.IsError {
		t.Fatal("expected isError result")
	}
	if !strings.Contains(res.Result.Content[0].Text, `"kind": "not_found"`) {
		t.Errorf("payload: %s", res.Result.Content[0].Text)
	}
}

func TestHandler_InvalidArguments(t *testing.T) {
	srv := kobotest.NewServer(t)
	s := newTestServer(t, srv, nil)

	var req mcp.CallToolRequest
	req.Params.Name = "export_data"
	req.Params.Arguments = map[string]any{"form_uid": "a1", "export_type": "pdf"}

	res, err := s.handler("export_data")(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}
	text := res.Content[0].(mcp.TextContent).Text
	if !strings.Contains(text, "invalid_argument") {
		t.Errorf("payload: %s", text)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("expected no server requests, got %d", n)
	}
}

func TestLogWriter(t *testing.T) {
	var got []string
	w := logWriter{logger: recorder(func(msg string, fields map[string]any) {
		got = append(got, fmt.Sprint(fields["detail"]))
	})}
	if _, err := w.Write([]byte("broken pipe\n")); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "broken pipe" {
		t.Errorf("got %v", got)
	}
}

type recorder func(msg string, fields map[string]any)

func (r recorder) Info(msg string, f map[string]any)  {}
func (r recorder) Warn(msg string, f map[string]any)  {}
func (r recorder) Debug(msg string, f map[string]any) {}
func (r recorder) Error(msg string, f map[string]any) { r(msg, f) }
