package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig holds runtime settings read from environment variables.
type ServerConfig struct {
	// HTTPAddr is the listen address for the API server.
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":5000"`

	// CatalogPath points at a levels.json file. Empty uses the embedded catalog.
	CatalogPath string `env:"CATALOG_PATH"`

	// LoadTimeout bounds the initial remote load before committing to the
	// in-memory fallback.
	LoadTimeout time.Duration `env:"LOAD_TIMEOUT" envDefault:"5s"`

	// RemoteDisabled skips the remote store entirely (in-memory only mode).
	RemoteDisabled bool `env:"REMOTE_DISABLED" envDefault:"false"`
}

// LoadServerConfig parses ServerConfig from the environment.
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
