package runtime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/bbdaniels/kobo-mcp/types"
)

// Environment variables read by ResolveConfig.
const (
	EnvToken              = "KOBO_API_TOKEN"
	EnvServer             = "KOBO_SERVER"
	EnvAuthScheme         = "KOBO_AUTH_SCHEME"
	EnvTimeout            = "KOBO_TIMEOUT"
	EnvTools              = "KOBO_TOOLS"
	EnvExportPollAttempts = "KOBO_EXPORT_POLL_ATTEMPTS"
	EnvImportPollAttempts = "KOBO_IMPORT_POLL_ATTEMPTS"
)

// Config is the resolved, immutable process configuration. Build it once at
// startup and pass it to the components that need it.
type Config struct {
	Credentials kobo.Credentials
	Timeout     time.Duration
	Services    kobo.ServiceConfig
	// Tools is the allow-list of exposed tools; empty means all.
	Tools []string
}

// Overrides carries values from CLI flags.
type Overrides struct {
	Server string
	Token  string
	Tools  []string
}

// ResolveConfig resolves the configuration from multiple sources with the
// following priority (highest wins):
//
//  1. CLI flags (o)
//  2. Environment variables (envVars, already merged from .env and process env)
//  3. kobo.yaml (cfg)
//
// A missing token is reported as kobo.ErrMissingToken.
func ResolveConfig(cfg *types.KoboConfig, envVars map[string]string, o Overrides) (*Config, error) {
	if cfg == nil {
		cfg = &types.KoboConfig{}
	}
	rc := &Config{
		Credentials: kobo.Credentials{
			ServerURL:  cfg.Server,
			AuthScheme: cfg.AuthScheme,
		},
		Tools: cfg.Tools,
	}

	var err error
	if rc.Timeout, err = types.ParseDuration("timeout", cfg.Timeout); err != nil {
		return nil, err
	}
	if rc.Services.ExportPoll, err = pollConfig("export", cfg.Export); err != nil {
		return nil, err
	}
	if rc.Services.ImportPoll, err = pollConfig("import", cfg.Import); err != nil {
		return nil, err
	}

	// Apply env vars
	if v := envVars[EnvServer]; v != "" {
		rc.Credentials.ServerURL = v
	}
	if v := envVars[EnvAuthScheme]; v != "" {
		rc.Credentials.AuthScheme = v
	}
	rc.Credentials.Token = envVars[EnvToken]
	if v := envVars[EnvTimeout]; v != "" {
		if rc.Timeout, err = types.ParseDuration(EnvTimeout, v); err != nil {
			return nil, err
		}
	}
	if v := envVars[EnvExportPollAttempts]; v != "" {
		if rc.Services.ExportPoll.Attempts, err = positiveInt(EnvExportPollAttempts, v); err != nil {
			return nil, err
		}
	}
	if v := envVars[EnvImportPollAttempts]; v != "" {
		if rc.Services.ImportPoll.Attempts, err = positiveInt(EnvImportPollAttempts, v); err != nil {
			return nil, err
		}
	}
	if v := envVars[EnvTools]; v != "" {
		rc.Tools = SplitList(v)
	}

	// CLI overrides are highest priority
	if o.Server != "" {
		rc.Credentials.ServerURL = o.Server
	}
	if o.Token != "" {
		rc.Credentials.Token = o.Token
	}
	if len(o.Tools) > 0 {
		rc.Tools = o.Tools
	}

	if rc.Credentials.ServerURL, err = kobo.NormalizeServer(rc.Credentials.ServerURL); err != nil {
		return nil, err
	}
	rc.Credentials.Token = strings.TrimSpace(rc.Credentials.Token)
	if rc.Credentials.Token == "" {
		return nil, fmt.Errorf("%w: set it in the environment or a .env file", kobo.ErrMissingToken)
	}
	return rc, nil
}

// ValidateTools reports names in allowed that are not in known.
func ValidateTools(allowed, known []string) error {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[k] = true
	}
	var unknown []string
	for _, a := range allowed {
		if !set[a] {
			unknown = append(unknown, a)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown tools: %s (available: %s)", strings.Join(unknown, ", "), strings.Join(known, ", "))
	}
	return nil
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func pollConfig(name string, p types.PollRef) (kobo.PollConfig, error) {
	interval, err := types.ParseDuration(name+".poll_interval", p.PollInterval)
	if err != nil {
		return kobo.PollConfig{}, err
	}
	return kobo.PollConfig{Attempts: p.PollAttempts, Interval: interval}, nil
}

func positiveInt(name, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, v)
	}
	return n, nil
}
