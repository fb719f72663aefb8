package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbdaniels/kobo-mcp/config"
	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/bbdaniels/kobo-mcp/runtime"
	"github.com/bbdaniels/kobo-mcp/tools"
	"github.com/bbdaniels/kobo-mcp/tools/kobotools"
)

func newLogger(cmd *cobra.Command) *runtime.JSONLogger {
	return runtime.NewJSONLogger(cmd.ErrOrStderr(), verbose)
}

// resolveConfig layers kobo.yaml, the .env file, the process environment and
// the global flags. tools overrides the allow-list when non-empty.
func resolveConfig(tools []string) (*runtime.Config, error) {
	cfg, err := config.LoadKoboConfig(cfgFile, true)
	if err != nil {
		return nil, err
	}
	dotenv, err := runtime.LoadEnvFile(envFile)
	if err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	rc, err := runtime.ResolveConfig(cfg, runtime.MergeEnv(dotenv, runtime.ProcessEnv()), runtime.Overrides{
		Server: serverURL,
		Tools:  tools,
	})
	if err != nil {
		return nil, err
	}
	if err := runtime.ValidateTools(rc.Tools, kobotools.Names()); err != nil {
		return nil, err
	}
	return rc, nil
}

// buildRegistry wires the HTTP client, the operation services and the tool
// registry, restricted to the configured allow-list.
func buildRegistry(rc *runtime.Config, logger *runtime.JSONLogger) (*tools.Registry, error) {
	opts := []kobo.Option{kobo.WithLogger(logger.With(map[string]any{"component": "kobo"}))}
	if rc.Timeout > 0 {
		opts = append(opts, kobo.WithTimeout(rc.Timeout))
	}
	client, err := kobo.NewClient(rc.Credentials, opts...)
	if err != nil {
		return nil, err
	}

	reg := tools.NewRegistry()
	if err := kobotools.RegisterAll(reg, kobotools.NewBackend(kobo.NewServices(client, rc.Services))); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	return reg.Filter(rc.Tools), nil
}
