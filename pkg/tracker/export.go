// SPDX-License-Identifier: Apache-2.0
package tracker

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

const exchangeTable = "debate_exchanges"

// WriteJSONL streams the log as JSON Lines, one entry per line.
func (t *Tracker) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, e := range t.All() {
		if err := enc.Encode(e); err != nil {
			return errors.New(errors.CodeInternal, "jsonl export failed", err)
		}
	}
	return nil
}

// WriteTable streams the log as a tab-separated table with a header row.
func (t *Tracker) WriteTable(w io.Writer) error {
	rows := [][]string{
		{"CORRELATION", "DIRECTION", "METHOD", "FROM", "TO", "ERROR", "TIMESTAMP"},
	}
	for _, e := range t.All() {
		errCol := ""
		if e.ErrorCode != 0 {
			errCol = fmt.Sprintf("%d %s", e.ErrorCode, e.ErrorMessage)
		}
		rows = append(rows, []string{
			e.CorrelationID,
			string(e.Direction),
			e.Method,
			e.FromAgent,
			e.ToAgent,
			errCol,
			e.Timestamp.Format(time.RFC3339),
		})
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return errors.New(errors.CodeInternal, "table export failed", err)
		}
	}
	return nil
}

// ExportSQLite writes the log to a SQLite file at path. The file is a
// self-contained tabular artifact; it is created only when requested and
// never read back by the system.
func (t *Tracker) ExportSQLite(path string) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.New(errors.CodeInternal, "open sqlite export", err).
			WithContext("path", path)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = errors.New(errors.CodeInternal, "close sqlite export", cerr)
		}
	}()

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		correlation_id TEXT NOT NULL,
		direction TEXT NOT NULL,
		envelope_id TEXT NOT NULL,
		method TEXT NOT NULL,
		from_agent TEXT NOT NULL,
		to_agent TEXT NOT NULL,
		error_code INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		recorded_at INTEGER NOT NULL
	);`, exchangeTable)
	if _, err := db.Exec(schema); err != nil {
		return errors.New(errors.CodeInternal, "ensure sqlite schema", err)
	}
	if _, err := db.Exec(fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS idx_%s_correlation ON %s(correlation_id);`,
		exchangeTable, exchangeTable)); err != nil {
		return errors.New(errors.CodeInternal, "ensure sqlite index", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.New(errors.CodeInternal, "begin sqlite export", err)
	}
	stmt := fmt.Sprintf(`INSERT INTO %s
		(correlation_id, direction, envelope_id, method, from_agent, to_agent, error_code, error_message, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`, exchangeTable)
	for _, e := range t.All() {
		if _, err := tx.Exec(stmt,
			e.CorrelationID,
			string(e.Direction),
			e.EnvelopeID,
			e.Method,
			e.FromAgent,
			e.ToAgent,
			e.ErrorCode,
			e.ErrorMessage,
			e.Timestamp.UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return errors.New(errors.CodeInternal, "insert sqlite export row", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.New(errors.CodeInternal, "commit sqlite export", err)
	}
	return nil
}
