package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Common errors
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")
)

// IBGE holds settings for the IBGE upstream APIs. All fields have working
// defaults; the YAML overlay exists for pointing the resolvers at a mirror
// or a local fixture server.
type IBGE struct {
	LocalitiesBaseURL string `yaml:"localities_base_url"`
	AggregatesBaseURL string `yaml:"aggregates_base_url"`
	MeshBaseURL       string `yaml:"mesh_base_url"`

	// RequestsPerSecond throttles outbound calls so catalog syncs and bulk
	// imports stay polite to the agency's API.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Config is the full application configuration.
type Config struct {
	DatabaseURL string `yaml:"-"`
	Port        string `yaml:"-"`
	IBGE        IBGE   `yaml:"ibge"`
}

// Defaults for the IBGE upstream. These are the public production endpoints.
const (
	DefaultLocalitiesBaseURL = "https://servicodados.ibge.gov.br/api/v1/localidades"
	DefaultAggregatesBaseURL = "https://servicodados.ibge.gov.br/api/v3/agregados"
	DefaultMeshBaseURL       = "https://servicodados.ibge.gov.br/api/v3/malhas/municipios"

	DefaultRequestsPerSecond = 5.0
)

// Load builds configuration from environment variables plus an optional YAML
// overlay. The overlay path comes from GEOINSIGHTS_CONFIG and defaults to
// "config.yaml"; a missing file is not an error.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        os.Getenv("PORT"),
		IBGE: IBGE{
			LocalitiesBaseURL: DefaultLocalitiesBaseURL,
			AggregatesBaseURL: DefaultAggregatesBaseURL,
			MeshBaseURL:       DefaultMeshBaseURL,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
	}

	path := os.Getenv("GEOINSIGHTS_CONFIG")
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		// Default file absent: env-only configuration.
		return cfg, cfg.Validate()
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.apply(overlay)

	return cfg, cfg.Validate()
}

// apply copies non-zero overlay fields over the defaults.
func (c *Config) apply(o Config) {
	if o.IBGE.LocalitiesBaseURL != "" {
		c.IBGE.LocalitiesBaseURL = o.IBGE.LocalitiesBaseURL
	}
	if o.IBGE.AggregatesBaseURL != "" {
		c.IBGE.AggregatesBaseURL = o.IBGE.AggregatesBaseURL
	}
	if o.IBGE.MeshBaseURL != "" {
		c.IBGE.MeshBaseURL = o.IBGE.MeshBaseURL
	}
	if o.IBGE.RequestsPerSecond > 0 {
		c.IBGE.RequestsPerSecond = o.IBGE.RequestsPerSecond
	}
}

// Validate checks that required settings are present.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}
