// Package store persists typed telemetry tables in an embedded SQLite
// database, one table per instrument family.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oceanbight/buoy-telemetry-etl/internal/domain"
)

// Store writes load results to SQLite. It implements pipeline.Sink.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (or creates) the SQLite file at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return &Store{db: db, logger: logger}, nil
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// Conn exposes the underlying connection for queries and tests.
func (s *Store) Conn() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Store inserts every row of the result into the instrument's table,
// creating the table from the schema on first contact. The whole batch is
// one transaction.
func (s *Store) Store(ctx context.Context, res *domain.Result) error {
	table := TableName(res.Instrument)
	if err := s.ensureTable(ctx, table, res); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, res))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for row := 0; row < res.NumRows; row++ {
		if _, err := stmt.ExecContext(ctx, rowArgs(res, row)...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", table, row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("rows stored", "table", table, "rows", res.NumRows)
	return nil
}

// TableName maps an instrument name to its SQLite table.
func TableName(instrument string) string {
	return "telemetry_" + instrument
}

func (s *Store) ensureTable(ctx context.Context, table string, res *domain.Result) error {
	cols := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		cols[i] = fmt.Sprintf("%q %s", c.Name, sqlType(c.Type))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", table, strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func insertSQL(table string, res *domain.Result) string {
	names := make([]string, len(res.Columns))
	marks := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		names[i] = fmt.Sprintf("%q", c.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(marks, ", "))
}

// rowArgs flattens one result row into driver arguments. SQLite has no NaN,
// so sentinel floats become NULL.
func rowArgs(res *domain.Result, row int) []any {
	args := make([]any, len(res.Columns))
	for i, c := range res.Columns {
		switch c.Type {
		case domain.TypeString:
			args[i] = c.Strings[row]
		case domain.TypeInt:
			args[i] = c.Ints[row]
		case domain.TypeFloat:
			if math.IsNaN(c.Floats[row]) {
				args[i] = nil
			} else {
				args[i] = c.Floats[row]
			}
		case domain.TypeDatetime:
			args[i] = c.Times[row].UTC().Format(time.RFC3339Nano)
		}
	}
	return args
}

func sqlType(t domain.Type) string {
	switch t {
	case domain.TypeInt:
		return "INTEGER"
	case domain.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}
