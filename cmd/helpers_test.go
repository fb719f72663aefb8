package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bbdaniels/kobo-mcp/internal/kobotest"
	"github.com/bbdaniels/kobo-mcp/runtime"
)

// resetFlags restores every flag to its default so tests sharing rootCmd do
// not leak values into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs rootCmd with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv(runtime.EnvToken, "")
	t.Setenv(runtime.EnvServer, "")
	t.Setenv(runtime.EnvTools, "")

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(bytes.NewReader(nil))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// workspace holds a .env with the fake server's token and a path for
// kobo.yaml, and returns the flags pointing at them.
func workspace(t *testing.T, srv *kobotest.Server) (dir string, flags []string) {
	t.Helper()
	dir = t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte(runtime.EnvToken+"="+kobotest.Token+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir, []string{
		"--server", srv.URL,
		"--env", envPath,
		"--config", filepath.Join(dir, "kobo.yaml"),
	}
}
