/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sqlite publishes rows of a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/mfreeman451/passpersist/pkg/logger"
	"github.com/mfreeman451/passpersist/pkg/mib"
	"github.com/mfreeman451/passpersist/pkg/oid"
	"github.com/mfreeman451/passpersist/pkg/refresh"
)

const (
	defaultTable = "entries"

	createTableSQL = `
	CREATE TABLE IF NOT EXISTS %s (
		oid TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		value TEXT NOT NULL
	);
	`

	selectSQL = `SELECT oid, type, value FROM %s`
	upsertSQL = `INSERT INTO %s (oid, type, value) VALUES (?, ?, ?)
		ON CONFLICT(oid) DO UPDATE SET type = excluded.type, value = excluded.value`
)

var (
	errMissingPath       = errors.New("sqlite source: path is required")
	errInvalidTable      = errors.New("sqlite source: invalid table name")
	errFailedOpenDB      = errors.New("failed to open database")
	errFailedToInit      = errors.New("failed to initialize schema")
	errFailedToQuery     = errors.New("failed to query")
	errFailedToScan      = errors.New("failed to scan")
	errFailedToUpsert    = errors.New("failed to upsert entry")
	errFailedToEnableWAL = errors.New("failed to enable WAL mode")

	tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Config is the JSON configuration of the sqlite source.
type Config struct {
	Path  string `json:"path"`
	Table string `json:"table,omitempty"`
	// Create makes the table when it does not exist yet
	Create bool `json:"create,omitempty"`
}

// Source reads the whole table on every refresh.
type Source struct {
	db    *sql.DB
	table string
	log   *slog.Logger
}

// New is the source factory.
func New(ctx context.Context, raw json.RawMessage, log *slog.Logger) (refresh.Updater, error) {
	var cfg Config

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("sqlite source: invalid config: %w", err)
		}
	}

	src, err := Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return src, nil
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Source, error) {
	if cfg.Path == "" {
		return nil, errMissingPath
	}

	if cfg.Table == "" {
		cfg.Table = defaultTable
	}

	if !tableName.MatchString(cfg.Table) {
		return nil, fmt.Errorf("%w: %q", errInvalidTable, cfg.Table)
	}

	sqlDB, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedOpenDB, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", errFailedOpenDB, err)
	}

	if cfg.Create {
		// Enable WAL mode for better concurrent access
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = sqlDB.Close()

			return nil, fmt.Errorf("%w: %w", errFailedToEnableWAL, err)
		}

		if _, err := sqlDB.ExecContext(ctx, fmt.Sprintf(createTableSQL, cfg.Table)); err != nil {
			_ = sqlDB.Close()

			return nil, fmt.Errorf("%w: %w", errFailedToInit, err)
		}
	}

	return NewFromDB(sqlDB, cfg.Table, log), nil
}

// NewFromDB wraps an already open database. table must be a plain
// identifier.
func NewFromDB(db *sql.DB, table string, log *slog.Logger) *Source {
	if log == nil {
		log = logger.Discard()
	}

	return &Source{db: db, table: table, log: log}
}

// Update replaces the staged tree with the current table contents. Rows
// with a malformed OID or an unknown type are skipped.
func (s *Source) Update(ctx context.Context, w mib.Writer) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(selectSQL, s.table))
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToQuery, err)
	}
	defer rows.Close()

	var entries []mib.Entry

	for rows.Next() {
		var suffix, typ, value string

		if err := rows.Scan(&suffix, &typ, &value); err != nil {
			return fmt.Errorf("%w: %w", errFailedToScan, err)
		}

		e, err := parseRow(suffix, typ, value)
		if err != nil {
			s.log.Warn("skipping row", "oid", suffix, "error", err)
			continue
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", errFailedToQuery, err)
	}

	w.Reset()

	for _, e := range entries {
		w.Upsert(e.OID, e.Type, e.Value)
	}

	return nil
}

func parseRow(suffix, typ, value string) (mib.Entry, error) {
	suffix = strings.TrimPrefix(strings.TrimSpace(suffix), ".")
	if !oid.Valid(suffix) {
		return mib.Entry{}, fmt.Errorf("%w: %q", mib.ErrInvalidOID, suffix)
	}

	t, err := mib.ParseType(strings.TrimSpace(typ))
	if err != nil {
		return mib.Entry{}, err
	}

	return mib.Entry{OID: suffix, Type: t, Value: value}, nil
}

// Put inserts or updates a row. It is used by tooling that seeds the
// table; the refresh loop only reads.
func (s *Source) Put(ctx context.Context, e mib.Entry) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(upsertSQL, s.table), e.OID, string(e.Type), e.Value); err != nil {
		return fmt.Errorf("%w: %w", errFailedToUpsert, err)
	}

	return nil
}

// Close closes the database connection.
func (s *Source) Close() error {
	return s.db.Close()
}
