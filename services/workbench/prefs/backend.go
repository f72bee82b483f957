// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/storage/badger"
)

// Backend persists raw preference payloads by namespace.
//
// Implementations must be safe for concurrent use. Load reports absence
// with found=false, never with an error.
type Backend interface {
	Load(ctx context.Context, namespace string) (payload []byte, found bool, err error)
	Save(ctx context.Context, namespace string, payload []byte) error
	Delete(ctx context.Context, namespace string) error
	Namespaces(ctx context.Context) ([]string, error)
}

// =============================================================================
// BadgerDB
// =============================================================================

const badgerKeyPrefix = "prefs/"

// BadgerBackend stores payloads in BadgerDB under "prefs/<namespace>".
type BadgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend wraps an open database. The caller keeps ownership of db.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

func (b *BadgerBackend) Load(ctx context.Context, namespace string) ([]byte, bool, error) {
	return b.db.Get(ctx, []byte(badgerKeyPrefix+namespace))
}

func (b *BadgerBackend) Save(ctx context.Context, namespace string, payload []byte) error {
	return b.db.Put(ctx, []byte(badgerKeyPrefix+namespace), payload)
}

func (b *BadgerBackend) Delete(ctx context.Context, namespace string) error {
	return b.db.Delete(ctx, []byte(badgerKeyPrefix+namespace))
}

func (b *BadgerBackend) Namespaces(ctx context.Context) ([]string, error) {
	keys, err := b.db.Keys(ctx, []byte(badgerKeyPrefix))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(string(k), badgerKeyPrefix))
	}
	return out, nil
}

// =============================================================================
// SQLite
// =============================================================================

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS preferences (
	namespace  TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteBackend stores payloads in a single sqlite table.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the sqlite database at path and applies
// the schema. Use ":memory:" for tests.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Close closes the database.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}

func (s *SQLiteBackend) Load(ctx context.Context, namespace string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM preferences WHERE namespace = ?`, namespace,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load preference %s: %w", namespace, err)
	}
	return payload, true, nil
}

func (s *SQLiteBackend) Save(ctx context.Context, namespace string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (namespace, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		namespace, payload, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save preference %s: %w", namespace, err)
	}
	return nil
}

func (s *SQLiteBackend) Delete(ctx context.Context, namespace string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("delete preference %s: %w", namespace, err)
	}
	return nil
}

func (s *SQLiteBackend) Namespaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT namespace FROM preferences ORDER BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

var (
	_ Backend = (*BadgerBackend)(nil)
	_ Backend = (*SQLiteBackend)(nil)
)
