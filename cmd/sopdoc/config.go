package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sopdoc/go-sopdoc/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// defaultConfigFile is looked up in the working directory when --config is
// not given.
const defaultConfigFile = "sopdoc.yaml"

// Config holds file-based defaults for the CLI. Flags override config values.
type Config struct {
	Images ImagesConfig `yaml:"images"`
	Export ExportConfig `yaml:"export"`
}

// ImagesConfig overrides the image ingestion policy.
type ImagesConfig struct {
	AllowedTypes []string `yaml:"allowedTypes"` // empty = policy default
	MaxBytes     int64    `yaml:"maxBytes"`     // 0 = policy default
}

// ExportConfig overrides export behavior.
type ExportConfig struct {
	Timeout string `yaml:"timeout"` // Go duration string, e.g. "45s"
}

// loadConfig reads the config file at path, or the default file if path is
// empty. A missing default file yields a zero config; a missing explicit
// path is an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return &cfg, nil
}

// resolveTimeout picks the flag value over the config value, validating the
// duration string. Zero means the library default.
func resolveTimeout(flagVal, cfgVal string) (time.Duration, error) {
	raw := flagVal
	if raw == "" {
		raw = cfgVal
	}
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, raw)
	}
	return d, nil
}
