// Package types holds configuration types for kobo.yaml.
package types

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// KoboConfig represents the kobo.yaml configuration file. Every field is
// optional. The API token is deliberately absent; it comes from the
// environment only.
type KoboConfig struct {
	Server     string   `yaml:"server,omitempty"`
	AuthScheme string   `yaml:"auth_scheme,omitempty"` // Token or Bearer
	Timeout    string   `yaml:"timeout,omitempty"`     // Go duration, e.g. "60s"
	Export     PollRef  `yaml:"export,omitempty"`
	Import     PollRef  `yaml:"import,omitempty"`
	Tools      []string `yaml:"tools,omitempty"`

	// Token is parsed only so that a token pasted into the file is rejected
	// instead of silently ignored.
	Token string `yaml:"token,omitempty"`
}

// PollRef bounds an export or import status poll loop.
type PollRef struct {
	PollAttempts int    `yaml:"poll_attempts,omitempty"`
	PollInterval string `yaml:"poll_interval,omitempty"`
}

// ParseKoboConfig parses raw YAML bytes into a KoboConfig and validates it.
// Empty input yields a zero config.
func ParseKoboConfig(data []byte) (*KoboConfig, error) {
	var cfg KoboConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing kobo config: %w", err)
	}

	if cfg.Token != "" {
		return nil, fmt.Errorf("kobo config: token must not be stored in kobo.yaml, set KOBO_API_TOKEN instead")
	}
	switch strings.ToLower(cfg.AuthScheme) {
	case "", "token", "bearer":
	default:
		return nil, fmt.Errorf("kobo config: auth_scheme must be Token or Bearer, got %q", cfg.AuthScheme)
	}
	if _, err := ParseDuration("timeout", cfg.Timeout); err != nil {
		return nil, err
	}
	for name, p := range map[string]PollRef{"export": cfg.Export, "import": cfg.Import} {
		if p.PollAttempts < 0 {
			return nil, fmt.Errorf("kobo config: %s.poll_attempts must not be negative", name)
		}
		if _, err := ParseDuration(name+".poll_interval", p.PollInterval); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// ParseDuration parses a positive Go duration. An empty value returns zero.
func ParseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("kobo config: %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("kobo config: %s must be positive, got %s", field, value)
	}
	return d, nil
}

// Marshal renders the config as YAML, as written by "kobo-mcp init".
func (c *KoboConfig) Marshal() ([]byte, error) {
	out := *c
	out.Token = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("encoding kobo config: %w", err)
	}
	return data, nil
}
