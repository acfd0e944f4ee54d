// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the membership service configuration.
//
// Configuration is resolved in three layers, later layers winning:
// built-in defaults, an optional YAML file, then OUTPOST_* environment
// variables. The resolved config is validated before the service uses
// it, so a typoed listen address fails at startup rather than at the
// first request.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full membership service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
	Feed    FeedConfig    `yaml:"feed"`
}

type ServerConfig struct {
	// ListenAddr is the host:port the HTTP server binds.
	ListenAddr string `yaml:"listen_addr" validate:"required,hostname_port"`

	// ShutdownGraceSeconds bounds graceful shutdown.
	ShutdownGraceSeconds int `yaml:"shutdown_grace_seconds" validate:"gte=0,lte=300"`
}

type StorageConfig struct {
	// Path is the Badger data directory. Ignored when InMemory is set.
	Path string `yaml:"path" validate:"required_unless=InMemory true"`

	// InMemory runs Badger without disk persistence. For tests and
	// ephemeral demo deployments.
	InMemory bool `yaml:"in_memory"`

	// SyncWrites forces fsync on every write.
	SyncWrites bool `yaml:"sync_writes"`
}

type CatalogConfig struct {
	// Dir holds the challenge definition YAML files.
	Dir string `yaml:"dir" validate:"required"`

	// Watch enables hot reload on file changes.
	Watch bool `yaml:"watch"`
}

// TokenEntry maps one bearer token to an agent identity.
type TokenEntry struct {
	Token   string   `yaml:"token" validate:"required"`
	AgentID string   `yaml:"agent_id" validate:"required"`
	Handle  string   `yaml:"handle"`
	Roles   []string `yaml:"roles"`
}

type AuthConfig struct {
	// Mode selects the token verifier: "dev" accepts everything as a
	// local admin, "static" checks the Tokens table.
	Mode string `yaml:"mode" validate:"oneof=dev static"`

	// Tokens is the static token table. Required in static mode.
	Tokens []TokenEntry `yaml:"tokens" validate:"required_if=Mode static,dive"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Dir enables JSON file logging alongside stderr.
	Dir string `yaml:"dir"`
}

type TracingConfig struct {
	// Enabled turns on OTLP trace export.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string `yaml:"endpoint" validate:"required_if=Enabled true"`
}

type FeedConfig struct {
	// EventsPerSecond throttles the live progress feed broadcast rate
	// per client. Zero disables throttling.
	EventsPerSecond float64 `yaml:"events_per_second" validate:"gte=0"`

	// Burst is the throttle burst size.
	Burst int `yaml:"burst" validate:"gte=0"`
}

// Default returns the built-in configuration, suitable for a local
// single-user deployment.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:           "localhost:8095",
			ShutdownGraceSeconds: 10,
		},
		Storage: StorageConfig{
			Path: "data/outpost",
		},
		Catalog: CatalogConfig{
			Dir:   "challenges",
			Watch: true,
		},
		Auth: AuthConfig{
			Mode: "dev",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Endpoint: "localhost:4317",
		},
		Feed: FeedConfig{
			EventsPerSecond: 10,
			Burst:           20,
		},
	}
}

// Load resolves the configuration: defaults, then the YAML file at
// path (skipped when path is empty), then OUTPOST_* environment
// variables. The result is validated before it is returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnv overlays OUTPOST_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OUTPOST_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("OUTPOST_DATA_DIR"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("OUTPOST_CHALLENGE_DIR"); v != "" {
		cfg.Catalog.Dir = v
	}
	if v := os.Getenv("OUTPOST_AUTH_MODE"); v != "" {
		cfg.Auth.Mode = v
	}
	if v := os.Getenv("OUTPOST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OUTPOST_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("OUTPOST_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
		cfg.Tracing.Enabled = true
	}
	if v := os.Getenv("OUTPOST_TRACING_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tracing.Enabled = enabled
		}
	}
}
