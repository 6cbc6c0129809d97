package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joacominatel/dbd/internal/bind"
	"github.com/joacominatel/dbd/internal/database"
)

// Gateway implements database.Gateway for PostgreSQL on a single pgx
// connection.
type Gateway struct{}

// New creates a new PostgreSQL gateway.
func New() *Gateway {
	return &Gateway{}
}

// Open connects using a libpq keyword/value string or a postgres:// URL.
func (g *Gateway) Open(ctx context.Context, _ string, params string) (database.Conn, error) {
	cfg, err := pgx.ParseConfig(params)
	if err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Conn{conn: conn}, nil
}

// Conn is an open PostgreSQL connection.
type Conn struct {
	conn  *pgx.Conn
	stmts int
}

// Placeholder returns the native placeholder for parameter n.
func Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// Escape doubles single quotes, as PQescapeStringConn does with
// standard_conforming_strings enabled.
func (c *Conn) Escape(raw string) (string, error) {
	if strings.IndexByte(raw, 0) >= 0 {
		return "", errors.New("escape: string contains a NUL byte")
	}
	return strings.ReplaceAll(raw, "'", "''"), nil
}

// Prepare creates a named server-side prepared statement.
func (c *Conn) Prepare(ctx context.Context, stmt *bind.Statement) (database.Stmt, error) {
	c.stmts++
	name := "dbd_" + strconv.Itoa(c.stmts)

	if _, err := c.conn.Prepare(ctx, name, stmt.Native(Placeholder)); err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return &Stmt{conn: c.conn, name: name, stmt: stmt}, nil
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.conn.Close(context.Background())
}

// Stmt is a prepared PostgreSQL statement.
type Stmt struct {
	conn *pgx.Conn
	name string
	stmt *bind.Statement
}

// Exec runs the statement and returns the affected row count.
func (s *Stmt) Exec(ctx context.Context, vals []bind.Value) (int64, error) {
	args, err := database.Args(s.stmt, vals)
	if err != nil {
		return 0, err
	}

	tag, err := s.conn.Exec(ctx, s.name, args...)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Query runs the statement with every column returned in text format.
func (s *Stmt) Query(ctx context.Context, vals []bind.Value) (database.Rows, error) {
	args, err := database.Args(s.stmt, vals)
	if err != nil {
		return nil, err
	}

	qargs := append([]any{pgx.QueryResultFormats{pgx.TextFormatCode}}, args...)
	rows, err := s.conn.Query(ctx, s.name, qargs...)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	// Get column names
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	return &Rows{rows: rows, columns: columns}, nil
}

// Close deallocates the prepared statement.
func (s *Stmt) Close() error {
	return s.conn.Deallocate(context.Background(), s.name)
}

// Rows adapts pgx.Rows to database.Rows.
type Rows struct {
	rows    pgx.Rows
	columns []string
}

// Columns returns the result column names.
func (r *Rows) Columns() []string {
	return r.columns
}

// Next advances to the next row.
func (r *Rows) Next() bool {
	return r.rows.Next()
}

// Values returns the current row in text format. NULL reads as the empty string.
func (r *Rows) Values() ([]string, error) {
	raw := r.rows.RawValues()
	row := make([]string, len(raw))
	for i, v := range raw {
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
	r.rows.Close()
	return nil
}
