// Package config defines the JSON-serializable configuration model for the
// step store process and the helpers that load it.
//
// A configuration file is optional. Values are layered in this order:
//
//  1. Default(): the embedded database under the home directory with schema
//     "dblod" and credentials sa/sa.
//  2. The JSON file, if one is given. Fields it omits keep their defaults.
//  3. Environment variables (STEPSTORE_KIND, STEPSTORE_URI, ...), decoded with
//     github.com/caarlos0/env.
//
// Example:
//
//	{
//	  "store":   { "kind": "sqlite", "uri": "file:~/", "schema": "dblod", "username": "sa", "password": "sa" },
//	  "metrics": { "backend": "none", "job": "stepstore" },
//	  "http":    { "addr": ":8080" }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"

	"stepstore/internal/storage"
)

// Config is the top-level object decoded from a configuration file.
type Config struct {
	Store   Store   `json:"store"`
	Metrics Metrics `json:"metrics"`
	HTTP    HTTP    `json:"http"`
}

// Store selects the backing database. It mirrors the recognized connection
// options {uri, schema, username, password} plus the dialect kind.
type Store struct {
	// Kind selects the dialect: sqlite (default), duckdb, libsql, postgres,
	// mysql or mssql.
	Kind string `json:"kind" env:"STEPSTORE_KIND"`

	// URI locates the server or, for embedded kinds, the directory prefix of
	// the database file (e.g. "file:~/").
	URI string `json:"uri" env:"STEPSTORE_URI"`

	// Schema is the database name; for embedded kinds it becomes the file name.
	Schema string `json:"schema" env:"STEPSTORE_SCHEMA"`

	Username string `json:"username" env:"STEPSTORE_USERNAME"`
	Password string `json:"password" env:"STEPSTORE_PASSWORD"`
}

// Storage converts the block into the storage package's connection config.
func (s Store) Storage() storage.Config {
	return storage.Config{
		Kind:     s.Kind,
		URI:      s.URI,
		Schema:   s.Schema,
		Username: s.Username,
		Password: s.Password,
	}
}

// Metrics selects the metrics backend: "none", "prometheus" (Pushgateway) or
// "datadog".
type Metrics struct {
	Backend        string `json:"backend" env:"METRICS_BACKEND"`
	Job            string `json:"job" env:"METRICS_JOB"`
	PushgatewayURL string `json:"pushgateway_url" env:"PUSHGATEWAY_URL"`
	DatadogAddr    string `json:"datadog_addr" env:"DATADOG_ADDR"`
}

// HTTP configures the serve command.
type HTTP struct {
	Addr string `json:"addr" env:"STEPSTORE_HTTP_ADDR"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Store: Store{
			Kind:     "sqlite",
			URI:      "file:~/",
			Schema:   "dblod",
			Username: "sa",
			Password: "sa",
		},
		Metrics: Metrics{Backend: "none", Job: "stepstore"},
		HTTP:    HTTP{Addr: ":8080"},
	}
}

// Decode reads a JSON document over Default(). Unknown fields are rejected so
// typos do not silently fall back to defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the file at path
// (skipped when path is empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if cfg, err = Decode(bytes.NewReader(b)); err != nil {
			return Config{}, fmt.Errorf("%w (file %s)", err, path)
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any STEPSTORE_* / METRICS_* / PUSHGATEWAY_URL /
// DATADOG_ADDR variables that are set. Unset variables leave fields alone.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}
