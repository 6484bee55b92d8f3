package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/sqlgenie/genie/internal/core/domain"
	"github.com/sqlgenie/genie/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator(allowed ...string) port.SQLValidator {
	return domain.NewRuleExecutor(domain.DefaultRules(allowed, false))
}

// --- mock QueryExecutor ---

type mockExecutor struct {
	executeCalled bool
	lastSQL       string
	result        []map[string]any
	err           error
}

func (m *mockExecutor) Execute(_ context.Context, sql string) ([]map[string]any, error) {
	m.executeCalled = true
	m.lastSQL = sql
	return m.result, m.err
}

// --- mock QueryAuditor ---

type recordingAuditor struct {
	entries []port.AuditEntry
}

func (a *recordingAuditor) Record(_ context.Context, e port.AuditEntry) {
	a.entries = append(a.entries, e)
}

func (a *recordingAuditor) Close() error { return nil }

// --- tests ---

func TestQueryService_ValidSelect(t *testing.T) {
	exec := &mockExecutor{
		result: []map[string]any{{"client_id": 1, "first_name": "alice"}},
	}
	svc := NewQueryService(testValidator("client_info_view"), exec, nil, testLogger(), nil, nil, nil)

	rows, err := svc.Execute(context.Background(), "SELECT client_id, first_name FROM client_info_view")
	require.NoError(t, err)
	assert.True(t, exec.executeCalled)
	assert.Equal(t, "SELECT client_id, first_name FROM client_info_view", exec.lastSQL)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["first_name"])
}

func TestQueryService_RejectsDrop(t *testing.T) {
	exec := &mockExecutor{}
	svc := NewQueryService(testValidator("client_info_view"), exec, nil, testLogger(), nil, nil, nil)

	_, err := svc.Execute(context.Background(), "DROP TABLE client")
	require.Error(t, err)
	assert.EqualError(t, err, "Forbidden SQL keywords detected. Only SELECT queries are allowed.")
	assert.False(t, exec.executeCalled, "executor must not be called for rejected queries")
}

func TestQueryService_RejectsNonWhitelistedTable(t *testing.T) {
	exec := &mockExecutor{}
	svc := NewQueryService(testValidator("client_info_view"), exec, nil, testLogger(), nil, nil, nil)

	_, err := svc.Execute(context.Background(), "SELECT name FROM secret_table")
	require.Error(t, err)
	assert.EqualError(t, err, "Access to table/object 'secret_table' is not allowed.")
	assert.False(t, exec.executeCalled)
}

func TestQueryService_RejectsEmptyQuery(t *testing.T) {
	exec := &mockExecutor{}
	svc := NewQueryService(testValidator("client_info_view"), exec, nil, testLogger(), nil, nil, nil)

	_, err := svc.Execute(context.Background(), "")
	require.Error(t, err)
	assert.False(t, exec.executeCalled)
}

func TestQueryService_ExecutorError(t *testing.T) {
	exec := &mockExecutor{err: fmt.Errorf("connection refused")}
	svc := NewQueryService(testValidator("client_info_view"), exec, nil, testLogger(), nil, nil, nil)

	_, err := svc.Execute(context.Background(), "SELECT * FROM client_info_view")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestQueryService_Explain_PrefixAddedAfterValidation(t *testing.T) {
	exec := &mockExecutor{result: []map[string]any{{"QUERY PLAN": "Seq Scan"}}}
	svc := NewQueryService(testValidator("client_info_view"), exec, nil, testLogger(), nil, nil, nil)

	rows, err := svc.Explain(context.Background(), "SELECT * FROM client_info_view", false)
	require.NoError(t, err)
	assert.Equal(t, "EXPLAIN SELECT * FROM client_info_view", exec.lastSQL)
	require.Len(t, rows, 1)

	_, err = svc.Explain(context.Background(), "SELECT * FROM client_info_view", true)
	require.NoError(t, err)
	assert.Equal(t, "EXPLAIN ANALYZE SELECT * FROM client_info_view", exec.lastSQL)
}

func TestQueryService_Explain_RejectsInvalidInnerQuery(t *testing.T) {
	exec := &mockExecutor{}
	svc := NewQueryService(testValidator("client_info_view"), exec, nil, testLogger(), nil, nil, nil)

	_, err := svc.Explain(context.Background(), "DELETE FROM client_info_view", false)
	require.Error(t, err)
	assert.False(t, exec.executeCalled)
}

func TestQueryService_Validate_AuditsVerdict(t *testing.T) {
	auditor := &recordingAuditor{}
	svc := NewQueryService(testValidator("client_info_view"), &mockExecutor{}, auditor, testLogger(), nil, nil, nil)
	ctx := WithToolName(context.Background(), "validate_sql")

	require.NoError(t, svc.Validate(ctx, "SELECT * FROM client_info_view"))
	err := svc.Validate(ctx, "DROP TABLE client")
	require.Error(t, err)

	require.Len(t, auditor.entries, 2)
	assert.True(t, auditor.entries[0].Valid)
	assert.Equal(t, domain.AllRulesPassed, auditor.entries[0].Verdict)
	assert.Equal(t, "validate_sql", auditor.entries[0].Tool)
	assert.False(t, auditor.entries[1].Valid)
	assert.Equal(t, err.Error(), auditor.entries[1].Verdict)
}

func TestQueryService_AuditsRejectedExecution(t *testing.T) {
	auditor := &recordingAuditor{}
	svc := NewQueryService(testValidator("client_info_view"), &mockExecutor{}, auditor, testLogger(), nil, nil, nil)

	_, err := svc.Execute(context.Background(), "DROP TABLE client")
	require.Error(t, err)

	require.Len(t, auditor.entries, 1)
	assert.False(t, auditor.entries[0].Valid)
	assert.Equal(t, "DROP TABLE client", auditor.entries[0].SQL)
	assert.Zero(t, auditor.entries[0].RowsReturned)
}

func TestQueryService_WithMasks(t *testing.T) {
	exec := &mockExecutor{
		result: []map[string]any{
			{"client_id": 1, "email_primary": "alice@example.com", "first_name": "Alice"},
			{"client_id": 2, "email_primary": "bob@example.com", "first_name": "Bob"},
		},
	}
	masks := map[string]domain.MaskType{"email_primary": domain.MaskRedact}
	svc := NewQueryService(testValidator("client_info_view"), exec, nil, testLogger(), masks, nil, nil)

	rows, err := svc.Execute(context.Background(), "SELECT * FROM client_info_view")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "***", rows[0]["email_primary"])
	assert.Equal(t, "***", rows[1]["email_primary"])
	assert.Equal(t, "Alice", rows[0]["first_name"])
}
