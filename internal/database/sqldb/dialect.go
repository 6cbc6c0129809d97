package sqldb

import (
	"errors"
	"strings"

	// database/sql drivers
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/snowflakedb/gosnowflake"
)

// Dialect describes the differences between database/sql drivers.
type Dialect struct {
	// DriverName is the name the driver registered with database/sql.
	DriverName string

	// Placeholder returns the native placeholder for parameter n.
	Placeholder func(n int) string

	// Escape quotes a raw string for embedding in a statement.
	Escape func(raw string) (string, error)
}

// SQLite uses '?' placeholders and doubles single quotes, like
// sqlite3_mprintf("%q").
var SQLite = Dialect{
	DriverName:  "sqlite3",
	Placeholder: questionMark,
	Escape:      doubleQuotes,
}

// Snowflake uses '?' placeholders; backslash is an escape character inside
// Snowflake string literals so it is doubled as well.
var Snowflake = Dialect{
	DriverName:  "snowflake",
	Placeholder: questionMark,
	Escape: func(raw string) (string, error) {
		if err := checkNUL(raw); err != nil {
			return "", err
		}
		return strings.NewReplacer(`\`, `\\`, "'", "''").Replace(raw), nil
	},
}

func questionMark(int) string {
	return "?"
}

func doubleQuotes(raw string) (string, error) {
	if err := checkNUL(raw); err != nil {
		return "", err
	}
	return strings.ReplaceAll(raw, "'", "''"), nil
}

func checkNUL(raw string) error {
	if strings.IndexByte(raw, 0) >= 0 {
		return errors.New("escape: string contains a NUL byte")
	}
	return nil
}
