package port

import "context"

// AuditEntry is a single auditable event: one validation verdict and, when
// the verdict allowed it, one query execution.
type AuditEntry struct {
	Tool         string // MCP tool that triggered the event
	Question     string // natural-language question, when the tool had one
	SQL          string
	Valid        bool   // validation verdict
	Verdict      string // verdict message
	RowsReturned int
	DurationMS   int64
	Err          error
}

// QueryAuditor records audit events.
type QueryAuditor interface {
	Record(ctx context.Context, entry AuditEntry)
	Close() error
}
