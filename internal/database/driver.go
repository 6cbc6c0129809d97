package database

//go:generate mockgen -source=driver.go -destination=mock/driver_mock.go -package=mock

import (
	"context"

	"github.com/joacominatel/dbd/internal/bind"
)

// Gateway opens connections for a named driver.
type Gateway interface {
	// Open connects using driver-specific connection parameters.
	Open(ctx context.Context, driver, params string) (Conn, error)
}

// Conn is an open database connection.
// Implementations are used from a single goroutine.
type Conn interface {
	// Escape quotes raw so it can be embedded in a statement for this
	// driver's SQL dialect.
	Escape(raw string) (string, error)

	// Prepare compiles a scanned statement, rewriting its parameter tags
	// into the driver's native placeholders.
	Prepare(ctx context.Context, stmt *bind.Statement) (Stmt, error)

	// Close closes the connection.
	Close() error
}

// Stmt is a prepared statement.
type Stmt interface {
	// Exec runs the statement and returns the number of rows affected.
	Exec(ctx context.Context, vals []bind.Value) (int64, error)

	// Query runs the statement and returns a cursor over its rows.
	Query(ctx context.Context, vals []bind.Value) (Rows, error)

	// Close releases the prepared statement.
	Close() error
}

// Rows is a forward-only cursor over a result set.
type Rows interface {
	// Columns returns the column names of the result.
	Columns() []string

	// Next advances to the next row.
	Next() bool

	// Values returns the current row. NULL columns are empty strings.
	Values() ([]string, error)

	// Err returns the error, if any, that ended iteration.
	Err() error

	// Close releases the cursor.
	Close() error
}
