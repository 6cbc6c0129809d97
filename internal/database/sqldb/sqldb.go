package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joacominatel/dbd/internal/bind"
	"github.com/joacominatel/dbd/internal/database"
)

// Gateway implements database.Gateway on top of database/sql for one
// SQL dialect.
type Gateway struct {
	dialect Dialect
}

// New creates a gateway for the given dialect.
func New(dialect Dialect) *Gateway {
	return &Gateway{dialect: dialect}
}

// Open opens the database and pins it to a single connection.
func (g *Gateway) Open(ctx context.Context, _ string, params string) (database.Conn, error) {
	db, err := sql.Open(g.dialect.DriverName, params)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Conn{db: db, dialect: g.dialect}, nil
}

// Conn is an open database/sql handle.
type Conn struct {
	db      *sql.DB
	dialect Dialect
}

// Escape quotes a string literal for the dialect.
func (c *Conn) Escape(raw string) (string, error) {
	return c.dialect.Escape(raw)
}

// Prepare compiles the statement with the dialect's placeholders.
func (c *Conn) Prepare(ctx context.Context, stmt *bind.Statement) (database.Stmt, error) {
	ps, err := c.db.PrepareContext(ctx, stmt.Native(c.dialect.Placeholder))
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return &Stmt{ps: ps, stmt: stmt}, nil
}

// Close closes the underlying database handle.
func (c *Conn) Close() error {
	return c.db.Close()
}

// Stmt wraps a *sql.Stmt.
type Stmt struct {
	ps   *sql.Stmt
	stmt *bind.Statement
}

// Exec runs the statement and returns the number of affected rows.
func (s *Stmt) Exec(ctx context.Context, vals []bind.Value) (int64, error) {
	args, err := database.Args(s.stmt, vals)
	if err != nil {
		return 0, err
	}

	res, err := s.ps.ExecContext(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Query runs the statement and returns its result rows.
func (s *Stmt) Query(ctx context.Context, vals []bind.Value) (database.Rows, error) {
	args, err := database.Args(s.stmt, vals)
	if err != nil {
		return nil, err
	}

	rows, err := s.ps.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("columns: %w", err)
	}

	return newRows(rows, columns), nil
}

// Close releases the prepared statement.
func (s *Stmt) Close() error {
	return s.ps.Close()
}

// Rows scans every column as raw bytes.
type Rows struct {
	rows    *sql.Rows
	columns []string
	raw     []sql.RawBytes
	ptrs    []any
}

func newRows(rows *sql.Rows, columns []string) *Rows {
	r := &Rows{
		rows:    rows,
		columns: columns,
		raw:     make([]sql.RawBytes, len(columns)),
		ptrs:    make([]any, len(columns)),
	}
	for i := range r.raw {
		r.ptrs[i] = &r.raw[i]
	}
	return r
}

// Columns returns the result column names.
func (r *Rows) Columns() []string {
	return r.columns
}

// Next advances to the next row.
func (r *Rows) Next() bool {
	return r.rows.Next()
}

// Values returns the current row as text. NULL reads as the empty string.
func (r *Rows) Values() ([]string, error) {
	if err := r.rows.Scan(r.ptrs...); err != nil {
		return nil, fmt.Errorf("read row: %w", err)
	}

	row := make([]string, len(r.raw))
	for i, v := range r.raw {
		row[i] = string(v)
	}
	return row, nil
}

// Err reports an error met while iterating.
func (r *Rows) Err() error {
	return r.rows.Err()
}

// Close releases the result set.
func (r *Rows) Close() error {
	return r.rows.Close()
}
