// Package conn provides the connection abstraction consumed by the record
// layer: boolean storage conversion, a minimal exec/query surface, and a
// connection pool.
package conn

import "context"

// Conn is the interface for a database connection.
type Conn interface {
	// ConvertBoolean converts a boolean value to the backend's storage
	// representation.
	ConvertBoolean(v any) any
	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, query string, args ...any) error
	// Query runs a statement and returns the rows as maps keyed by column.
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)
	// Close terminates the connection.
	Close() error
	// IsOpen returns true if the connection is usable.
	IsOpen() bool
}
