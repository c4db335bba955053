// Package config loads server configuration. Precedence: built-in
// defaults, then the optional YAML file named by STUDYGRAPH_CONFIG, then
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend choices for the graph store.
const (
	BackendNeo4j  = "neo4j"
	BackendSQLite = "sqlite"
)

// Config is the full server configuration.
type Config struct {
	Environment  string        `yaml:"environment"`
	Port         int           `yaml:"port"`
	Backend      string        `yaml:"backend"`
	QueryTimeout time.Duration `yaml:"query_timeout"`

	Neo4j  Neo4j  `yaml:"neo4j"`
	SQLite SQLite `yaml:"sqlite"`
}

// Neo4j holds connection parameters for the Neo4j backend.
type Neo4j struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// SQLite holds parameters for the embedded backend.
type SQLite struct {
	Path string `yaml:"path"`
}

// Load builds and validates the configuration.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:  "production",
		Port:         8080,
		Backend:      BackendNeo4j,
		QueryTimeout: 15 * time.Second,
		Neo4j: Neo4j{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		SQLite: SQLite{Path: "studygraph.db"},
	}

	if path := os.Getenv("STUDYGRAPH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("GRAPH_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("QUERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing QUERY_TIMEOUT: %w", err)
		}
		cfg.QueryTimeout = d
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		cfg.Neo4j.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Neo4j.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		cfg.Neo4j.Database = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}
	return nil
}

// Validate checks the backend choice and its required parameters.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("neo4j backend requires a URI")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	default:
		return fmt.Errorf("unknown graph backend %q", c.Backend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Development reports whether the server runs in development mode.
func (c *Config) Development() bool {
	return c.Environment == "development"
}
