// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"strings"

	"github.com/AleutianAI/ClusterWorkbench/pkg/logging"
)

// LogCounter is a logging.LogExporter that counts Warn and Error records
// in LogRecords.
type LogCounter struct{}

// Export counts entry when it is a warning or an error.
func (LogCounter) Export(_ context.Context, entry logging.LogEntry) error {
	if entry.Level < logging.LevelWarn {
		return nil
	}
	LogRecords.WithLabelValues(strings.ToLower(entry.Level.String())).Inc()
	return nil
}

// Flush is a no-op.
func (LogCounter) Flush(context.Context) error { return nil }

// Close is a no-op.
func (LogCounter) Close() error { return nil }

var _ logging.LogExporter = LogCounter{}
