package postgres

import (
	"context"

	"github.com/sqlgenie/genie/internal/core/port"
)

// ExplainOnlyExecutor forces every query through EXPLAIN, for deployments
// that want query plans but never data. Queries already prefixed with
// EXPLAIN pass through unchanged.
type ExplainOnlyExecutor struct {
	inner port.QueryExecutor
}

func NewExplainOnlyExecutor(inner port.QueryExecutor) *ExplainOnlyExecutor {
	return &ExplainOnlyExecutor{inner: inner}
}

func (e *ExplainOnlyExecutor) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	if !isExplain(sql) {
		sql = "EXPLAIN " + sql
	}
	return e.inner.Execute(ctx, sql)
}

// DryRunExecutor never touches the database: the caller gets back the SQL
// that would have run. Validation still happens upstream, so a dry run
// exercises the full safety pipeline.
type DryRunExecutor struct{}

func (DryRunExecutor) Execute(_ context.Context, sql string) ([]map[string]any, error) {
	return []map[string]any{{"dry_run": true, "sql": sql}}, nil
}
