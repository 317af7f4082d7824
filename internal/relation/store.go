// Package relation provides the in-memory SQLite relation that
// accumulates extracted log records for one run.
package relation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/topngx/topngx/pkg/types"
)

// Column describes one relation column.
type Column struct {
	// Name is the column name, equal to the requested field name.
	Name string

	// Type is the SQLite column type (TEXT or INTEGER).
	Type string
}

// Store is an append-only in-memory relation, one row per matched log
// line. It is owned by a single processor; Insert and Query are never
// called concurrently.
type Store struct {
	db        *sql.DB
	columns   []Column
	insertSQL string
	rowCount  int64
}

// QueryResult holds the columns and rows produced by one query.
type QueryResult struct {
	Columns []string
	Rows    [][]interface{}
}

// New creates an in-memory relation with the given columns. Each store
// gets its own shared-cache database so independent stores never
// collide.
func New(columns []Column) (*Store, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("relation: cannot create store without columns")
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("relation: failed to open store: %w", err)
	}

	// A single connection keeps the in-memory database alive for the
	// lifetime of the store.
	db.SetMaxOpenConns(1)

	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%s %s", col.Name, col.Type)
		names[i] = col.Name
		params[i] = "?"
	}

	createSQL := fmt.Sprintf("CREATE TABLE log (%s)", strings.Join(defs, ", "))
	if _, err := db.Exec(createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("relation: failed to create log table: %w", err)
	}

	return &Store{
		db:        db,
		columns:   columns,
		insertSQL: fmt.Sprintf("INSERT INTO log (%s) VALUES (%s)", strings.Join(names, ", "), strings.Join(params, ", ")),
	}, nil
}

// Insert appends records as rows, one transaction per batch. A failed
// batch is rolled back and leaves prior rows intact.
func (s *Store) Insert(ctx context.Context, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("relation: failed to begin insert: %v: %w", err, types.ErrStore)
	}

	stmt, err := tx.PrepareContext(ctx, s.insertSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("relation: failed to prepare insert: %v: %w", err, types.ErrStore)
	}
	defer stmt.Close()

	for _, record := range records {
		if len(record.Values) != len(s.columns) {
			tx.Rollback()
			return fmt.Errorf("relation: record has %d values, want %d: %w", len(record.Values), len(s.columns), types.ErrStore)
		}
		if _, err := stmt.ExecContext(ctx, record.Values...); err != nil {
			tx.Rollback()
			return fmt.Errorf("relation: failed to insert row: %v: %w", err, types.ErrStore)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("relation: failed to commit insert: %v: %w", err, types.ErrStore)
	}

	s.rowCount += int64(len(records))
	return nil
}

// Query executes one SQL query against the relation and materializes
// its result. Failures surface the underlying SQLite message.
func (s *Store) Query(ctx context.Context, query string) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("relation: %v: %w", err, types.ErrQuery)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("relation: %v: %w", err, types.ErrQuery)
	}

	result := &QueryResult{Columns: columns}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("relation: %v: %w", err, types.ErrQuery)
		}

		rowCopy := make([]interface{}, len(values))
		copy(rowCopy, values)
		result.Rows = append(result.Rows, rowCopy)

		for i := range values {
			values[i] = nil
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("relation: %v: %w", err, types.ErrQuery)
	}

	return result, nil
}

// RowCount returns the number of rows inserted so far.
func (s *Store) RowCount() int64 {
	return s.rowCount
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
