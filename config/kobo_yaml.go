// Package config loads kobo.yaml from disk.
package config

import (
	"fmt"
	"os"

	"github.com/bbdaniels/kobo-mcp/types"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "kobo.yaml"

// LoadKoboConfig reads and parses a kobo.yaml file from the given path. When
// optional is true a missing file yields an empty config.
func LoadKoboConfig(path string, optional bool) (*types.KoboConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return &types.KoboConfig{}, nil
		}
		return nil, fmt.Errorf("reading kobo config %s: %w", path, err)
	}
	cfg, err := types.ParseKoboConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WriteKoboConfig writes cfg to path, refusing to overwrite unless force is set.
func WriteKoboConfig(path string, cfg *types.KoboConfig, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
