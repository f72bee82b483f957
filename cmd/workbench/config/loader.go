// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the workbench configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// DefaultPath returns ~/.workbench/workbench.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".workbench", "workbench.yaml"), nil
}

// Load reads the config at path, creating it with defaults first if it does
// not exist. A note is written to notice when the file is created; notice
// may be nil.
func Load(path string, notice io.Writer) (*WorkbenchConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if notice != nil {
			fmt.Fprintf(notice, " First run detected, creating the config at %s\n", path)
		}
		if err := Save(path, DefaultConfig()); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.expand()
	return &cfg, nil
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg WorkbenchConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode the config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks field constraints and reports every failing field.
func Validate(cfg *WorkbenchConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got %q", field, fe.Value())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// FixturePath returns the results fixture path, defaulting to
// results.yaml in DataDir.
func (c *WorkbenchConfig) FixturePath() string {
	if c.Backend.Fixture != "" {
		return c.Backend.Fixture
	}
	return filepath.Join(c.DataDir, "results.yaml")
}

// expand resolves ~ in path fields.
func (c *WorkbenchConfig) expand() {
	c.DataDir = expandPath(c.DataDir)
	c.Logging.Dir = expandPath(c.Logging.Dir)
	c.Backend.Fixture = expandPath(c.Backend.Fixture)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
