package opensearchengine

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment overrides, e.g. OSDSL_ADDRESSES.
const envPrefix = "OSDSL_"

// ClientConfig holds the connection settings for a Client.
type ClientConfig struct {
	Addresses      []string      `koanf:"addresses"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// LoadClientConfig loads a ClientConfig, layering sources in order of
// precedence: built-in defaults, then the YAML file at configPath (skipped
// when empty), then OSDSL_* environment variables. OSDSL_ADDRESSES accepts a
// comma-separated list.
func LoadClientConfig(configPath string) (ClientConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"addresses":       []string{"http://localhost:9200"},
		"request_timeout": "30s",
	}, "."), nil); err != nil {
		return ClientConfig{}, fmt.Errorf("loading config defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return ClientConfig{}, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(envName string) string {
		return strings.ToLower(strings.TrimPrefix(envName, envPrefix))
	}), nil); err != nil {
		return ClientConfig{}, fmt.Errorf("loading config from environment: %w", err)
	}

	var config ClientConfig
	if err := k.Unmarshal("", &config); err != nil {
		return ClientConfig{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	return config, nil
}
