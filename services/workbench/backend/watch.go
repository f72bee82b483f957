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
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce groups the several events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

// Watch re-runs the last request whenever the fixture file changes. It
// blocks until ctx is done.
//
// The parent directory is watched rather than the file, so editors that
// replace the file on save are still seen.
func (r *Runner) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fixture watcher: %w", err)
	}
	defer w.Close()

	target, err := filepath.Abs(r.path)
	if err != nil {
		return fmt.Errorf("resolving fixture path: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				debounce = time.After(watchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("fixture watcher error", "error", err.Error())

		case <-debounce:
			debounce = nil
			if r.Rerun() {
				r.logger.Info("fixture changed, re-running last request", "path", target)
			}
		}
	}
}
