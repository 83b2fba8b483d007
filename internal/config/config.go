// Package config defines the server configuration. It is loaded once at
// process start, validated, and passed by reference into the server; there
// is no lazily-initialized global.
package config

import (
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"

	"github.com/modelgov/modelgov/pkg/logger"
)

// DefaultConfig returns the default configuration of the server.
func DefaultConfig() *Config {
	return &Config{
		ConfigFile: "",
		Log:        Log{Level: "info", Color: true},
		Port:       8080,
		DB:         *DefaultDBConfig(),
		Registry:   RegistryConfig{Source: "postgres"},
		CORS:       CORSConfig{AllowedOrigin: "*"},
	}
}

// Log mirrors pkg/logger.Config for configuration purposes.
type Log struct {
	Level string `json:"level"`
	Color bool   `json:"color"`
}

// Validate implements the check.Validatable interface.
func (l Log) Validate() []error {
	return logger.Config{Level: l.Level, Color: l.Color}.Validate()
}

// DefaultDBConfig returns the default configuration of the database.
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Host:    "localhost",
		Port:    "5432",
		Name:    "modelgov",
		SSLMode: "disable",
	}
}

// DBConfig hosts configuration fields of the database. When SecretARN is
// set, User and Password are resolved from the referenced Secrets Manager
// secret instead.
type DBConfig struct {
	User      string `json:"user"`
	Password  string `json:"password"`
	SecretARN string `json:"secret_arn"`
	Host      string `json:"host"`
	Port      string `json:"port"`
	Name      string `json:"name"`
	SSLMode   string `json:"ssl_mode"`
}

// StorageConfig hosts configuration fields of the artifact object store.
type StorageConfig struct {
	Bucket string `json:"bucket"`
	Region string `json:"region"`
}

// Validate implements the check.Validatable interface. Artifact storage is
// optional; a region without a bucket is a misconfiguration.
func (c StorageConfig) Validate() []error {
	var errs []error
	if c.Bucket == "" && c.Region != "" {
		errs = append(errs, errors.New("storage region is set but no bucket is configured"))
	}
	return errs
}

// IdentityConfig hosts configuration fields of the managed identity backend.
type IdentityConfig struct {
	Region   string `json:"region"`
	ClientID string `json:"client_id"`
}

// Validate implements the check.Validatable interface. The identity backend
// is optional; a region without a client id is a misconfiguration.
func (c IdentityConfig) Validate() []error {
	var errs []error
	if c.ClientID == "" && c.Region != "" {
		errs = append(errs, errors.New("identity region is set but no client id is configured"))
	}
	return errs
}

// TrackingConfig hosts configuration fields of the experiment tracking
// server.
type TrackingConfig struct {
	TrackingURI string `json:"tracking_uri"`
}

// Validate implements the check.Validatable interface.
func (c TrackingConfig) Validate() []error {
	if c.TrackingURI == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(c.TrackingURI); err != nil {
		return []error{errors.Wrap(err, "invalid tracking uri")}
	}
	return nil
}

// RegistryConfig selects the model data source. The two strategies are never
// merged: either the live database or the static demo set serves requests.
type RegistryConfig struct {
	Source string `json:"source"`
}

// Validate implements the check.Validatable interface.
func (c RegistryConfig) Validate() []error {
	switch c.Source {
	case "postgres", "static":
		return nil
	}
	return []error{errors.Errorf("registry source must be postgres or static, got %q", c.Source)}
}

// CORSConfig hosts the allowed frontend origin.
type CORSConfig struct {
	AllowedOrigin string `json:"allowed_origin"`
}

// Config is the full configuration of the server.
type Config struct {
	ConfigFile string         `json:"config_file"`
	Log        Log            `json:"log"`
	Port       int            `json:"port"`
	DB         DBConfig       `json:"db"`
	Storage    StorageConfig  `json:"storage"`
	Identity   IdentityConfig `json:"identity"`
	Tracking   TrackingConfig `json:"tracking"`
	Registry   RegistryConfig `json:"registry"`
	CORS       CORSConfig     `json:"cors"`
}

// Validate implements the check.Validatable interface.
func (c Config) Validate() []error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, errors.Errorf("invalid port %d", c.Port))
	}
	return errs
}

// Printable returns the configuration as JSON with secrets scrubbed, for
// logging at startup.
func (c Config) Printable() ([]byte, error) {
	const hiddenValue = "********"
	if c.DB.Password != "" {
		c.DB.Password = hiddenValue
	}
	out, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert config to JSON")
	}
	return out, nil
}
