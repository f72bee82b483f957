// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package backend

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed sample.yaml
var sampleData []byte

// SampleFixture returns the built-in results fixture.
func SampleFixture() []byte {
	out := make([]byte, len(sampleData))
	copy(out, sampleData)
	return out
}

// EnsureSample writes the built-in fixture to path unless a file already
// exists there. It reports whether it wrote one.
func EnsureSample(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat fixture %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create fixture directory: %w", err)
	}
	if err := os.WriteFile(path, sampleData, 0o644); err != nil {
		return false, fmt.Errorf("failed to write sample fixture: %w", err)
	}
	return true, nil
}
