package runtime

import (
	"errors"
	"testing"
	"time"

	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/bbdaniels/kobo-mcp/types"
)

func TestResolveConfig_Layers(t *testing.T) {
	cfg := &types.KoboConfig{
		Server:     "eu",
		AuthScheme: "Bearer",
		Timeout:    "10s",
		Export:     types.PollRef{PollAttempts: 5, PollInterval: "2s"},
		Tools:      []string{"list_forms"},
	}
	env := map[string]string{
		EnvToken:              "env-token",
		EnvTimeout:            "20s",
		EnvImportPollAttempts: "7",
	}

	rc, err := ResolveConfig(cfg, env, Overrides{})
	if err != nil {
		t.Fatalf("ResolveConfig error: %v", err)
	}
	if rc.Credentials.ServerURL != kobo.EUServer {
		t.Errorf("server: got %q", rc.Credentials.ServerURL)
	}
	if rc.Credentials.Token != "env-token" || rc.Credentials.AuthScheme != "Bearer" {
		t.Errorf("credentials: %+v", rc.Credentials)
	}
	if rc.Timeout != 20*time.Second {
		t.Errorf("env timeout should win over yaml: got %v", rc.Timeout)
	}
	if rc.Services.ExportPoll != (kobo.PollConfig{Attempts: 5, Interval: 2 * time.Second}) {
		t.Errorf("export poll: %+v", rc.Services.ExportPoll)
	}
	if rc.Services.ImportPoll.Attempts != 7 {
		t.Errorf("import poll: %+v", rc.Services.ImportPoll)
	}
	if len(rc.Tools) != 1 || rc.Tools[0] != "list_forms" {
		t.Errorf("tools: %v", rc.Tools)
	}
}

func TestResolveConfig_FlagsWin(t *testing.T) {
	env := map[string]string{EnvToken: "env-token", EnvServer: "eu", EnvTools: "get_form, list_forms"}
	rc, err := ResolveConfig(nil, env, Overrides{
		Server: "https://kobo.example.org/",
		Token:  "flag-token",
		Tools:  []string{"export_data"},
	})
	if err != nil {
		t.Fatalf("ResolveConfig error: %v", err)
	}
	if rc.Credentials.ServerURL != "https://kobo.example.org" || rc.Credentials.Token != "flag-token" {
		t.Errorf("credentials: %+v", rc.Credentials)
	}
	if len(rc.Tools) != 1 || rc.Tools[0] != "export_data" {
		t.Errorf("tools: %v", rc.Tools)
	}
}

func TestResolveConfig_Defaults(t *testing.T) {
	rc, err := ResolveConfig(nil, map[string]string{EnvToken: "t", EnvTools: "get_form, list_forms"}, Overrides{})
	if err != nil {
		t.Fatalf("ResolveConfig error: %v", err)
	}
	if rc.Credentials.ServerURL != kobo.DefaultServer {
		t.Errorf("server: got %q", rc.Credentials.ServerURL)
	}
	if len(rc.Tools) != 2 || rc.Tools[1] != "list_forms" {
		t.Errorf("tools from env: %v", rc.Tools)
	}
}

func TestResolveConfig_Errors(t *testing.T) {
	_, err := ResolveConfig(nil, map[string]string{}, Overrides{})
	if !errors.Is(err, kobo.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad server", map[string]string{EnvToken: "t", EnvServer: "ftp://x"}},
		{"bad timeout", map[string]string{EnvToken: "t", EnvTimeout: "forever"}},
		{"bad attempts", map[string]string{EnvToken: "t", EnvExportPollAttempts: "0"}},
	}
	for _, tt := range tests {
		if _, err := ResolveConfig(nil, tt.env, Overrides{}); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestValidateTools(t *testing.T) {
	known := []string{"list_forms", "get_form"}
	if err := ValidateTools([]string{"get_form"}, known); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTools([]string{"get_form", "drop_form"}, known); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, ,b,c ")
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("got %v", got)
	}
	if SplitList("") != nil {
		t.Error("empty input should yield nil")
	}
}
