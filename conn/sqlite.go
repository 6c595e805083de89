package conn

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// SQLite is a Conn backed by an embedded sqlite database. It stores booleans
// as the integers 0 and 1.
type SQLite struct {
	db     *sql.DB
	closed atomic.Bool
}

// OpenSQLite opens a sqlite database at the given DSN. Use ":memory:" for an
// in-memory database.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

// ConvertBoolean converts truthy values to int64(1) and falsy values to
// int64(0). Nil passes through unchanged.
func (c *SQLite) ConvertBoolean(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	case string:
		switch t {
		case "", "0", "f", "false", "F", "FALSE":
			return int64(0)
		}
		return int64(1)
	case int:
		return boolInt(t != 0)
	case int64:
		return boolInt(t != 0)
	case float64:
		return boolInt(t != 0)
	}
	return int64(1)
}

func boolInt(b bool) int64 {
	if b {
		return int64(1)
	}
	return int64(0)
}

// Exec runs a statement that returns no rows.
func (c *SQLite) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.db.ExecContext(ctx, query, args...)
	return err
}

// Query runs a statement and returns the rows as maps keyed by column name.
func (c *SQLite) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close terminates the connection.
func (c *SQLite) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}

// IsOpen returns true if the connection is usable.
func (c *SQLite) IsOpen() bool {
	return !c.closed.Load()
}
