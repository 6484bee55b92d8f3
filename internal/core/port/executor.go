package port

import "context"

// QueryExecutor runs an already-validated SQL statement and returns the
// result rows as maps keyed by column name.
type QueryExecutor interface {
	Execute(ctx context.Context, sql string) ([]map[string]any, error)
}
