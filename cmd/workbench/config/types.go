// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"time"
)

// Preference storage drivers.
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// WorkbenchConfig is the on-disk workbench configuration.
type WorkbenchConfig struct {
	// DataDir holds preference storage and the default results fixture.
	DataDir string `yaml:"data_dir" validate:"required"`

	Preferences PreferencesConfig `yaml:"preferences"`
	Logging     LoggingConfig     `yaml:"logging"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Backend     BackendConfig     `yaml:"backend"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type PreferencesConfig struct {
	// Driver is "badger" or "sqlite".
	Driver string `yaml:"driver" validate:"oneof=badger sqlite"`

	// FlushDelay coalesces preference writes.
	FlushDelay time.Duration `yaml:"flush_delay" validate:"gte=0"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `yaml:"dir" validate:"required"`
}

type DefaultsConfig struct {
	Source    string `yaml:"source" validate:"required"`
	Algorithm string `yaml:"algorithm" validate:"oneof=lingo stc bkmeans"`
}

type BackendConfig struct {
	// Fixture is the results file. Empty means results.yaml in DataDir.
	Fixture string `yaml:"fixture,omitempty"`

	// Delay is added to every backend run.
	Delay time.Duration `yaml:"delay" validate:"gte=0"`

	// Watch re-runs the last request when the fixture changes.
	Watch bool `yaml:"watch"`
}

type MetricsConfig struct {
	// Addr serves Prometheus metrics when set, e.g. "127.0.0.1:9464".
	Addr string `yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() WorkbenchConfig {
	return WorkbenchConfig{
		DataDir: "~/.workbench/data",
		Preferences: PreferencesConfig{
			Driver:     DriverBadger,
			FlushDelay: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.workbench/logs",
		},
		Defaults: DefaultsConfig{
			Source:    "files",
			Algorithm: "lingo",
		},
		Backend: BackendConfig{
			Delay: 400 * time.Millisecond,
			Watch: true,
		},
	}
}
