package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseEnvVars(t *testing.T) {
	input := `
# KoboToolbox credentials
KOBO_API_TOKEN="abc 123"
export KOBO_SERVER=eu
KOBO_AUTH_SCHEME='Bearer'
KOBO_TIMEOUT=30s # per request
NOT_A_PAIR
EMPTY=
`
	env, err := ParseEnvVars(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseEnvVars error: %v", err)
	}

	want := map[string]string{
		"KOBO_API_TOKEN":   "abc 123",
		"KOBO_SERVER":      "eu",
		"KOBO_AUTH_SCHEME": "Bearer",
		"KOBO_TIMEOUT":     "30s",
		"EMPTY":            "",
	}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("%s: got %q, want %q", k, env[k], v)
		}
	}
	if _, ok := env["NOT_A_PAIR"]; ok {
		t.Error("lines without = should be skipped")
	}
}

func TestParseEnvVars_QuotedHash(t *testing.T) {
	env, err := ParseEnvVars(strings.NewReader(`TOKEN="a #b"`))
	if err != nil {
		t.Fatal(err)
	}
	if env["TOKEN"] != "a #b" {
		t.Errorf("quoted value: got %q", env["TOKEN"])
	}
}

func TestParseEnvVars_MissingName(t *testing.T) {
	if _, err := ParseEnvVars(strings.NewReader("OK=1\n=oops\n")); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line 2 error, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	env, err := LoadEnvFile(filepath.Join(dir, "missing.env"))
	if err != nil || len(env) != 0 {
		t.Errorf("missing file: got %v, %v", env, err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("KOBO_API_TOKEN=t0k\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	env, err = LoadEnvFile(path)
	if err != nil {
		t.Fatalf("LoadEnvFile error: %v", err)
	}
	if env["KOBO_API_TOKEN"] != "t0k" {
		t.Errorf("token: got %q", env["KOBO_API_TOKEN"])
	}
}

func TestMergeEnv(t *testing.T) {
	got := MergeEnv(
		map[string]string{"A": "file", "B": "file"},
		map[string]string{"B": "process", "C": ""},
	)
	if got["A"] != "file" || got["B"] != "process" {
		t.Errorf("merge: %v", got)
	}
	if _, ok := got["C"]; ok {
		t.Error("empty values should not be merged")
	}
}

func TestProcessEnv(t *testing.T) {
	t.Setenv("KOBO_TEST_PROCESS_ENV", "x=y")
	if got := ProcessEnv()["KOBO_TEST_PROCESS_ENV"]; got != "x=y" {
		t.Errorf("got %q", got)
	}
}

func TestSetEnvFileVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("# kobo\nOTHER=1\nexport KOBO_API_TOKEN=old\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := SetEnvFileVar(path, "KOBO_API_TOKEN", "new"); err != nil {
		t.Fatalf("SetEnvFileVar error: %v", err)
	}
	if err := SetEnvFileVar(path, "KOBO_SERVER", "https://kobo.example.org"); err != nil {
		t.Fatalf("SetEnvFileVar error: %v", err)
	}

	env, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("LoadEnvFile error: %v", err)
	}
	if env["KOBO_API_TOKEN"] != "new" || env["OTHER"] != "1" || env["KOBO_SERVER"] != "https://kobo.example.org" {
		t.Errorf("env: %v", env)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# kobo\n") {
		t.Errorf("comments should be kept:\n%s", data)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode: %v", info.Mode().Perm())
	}
}

func TestSetEnvFileVar_QuotesSpaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := SetEnvFileVar(path, "K", "a b #c"); err != nil {
		t.Fatal(err)
	}
	env, _ := LoadEnvFile(path)
	if env["K"] != "a b #c" {
		t.Errorf("got %q", env["K"])
	}
}
