package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sqlgenie/genie/internal/core/domain"
	"github.com/sqlgenie/genie/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type toolNameKey struct{}

// WithToolName returns a context carrying the MCP tool name for audit logging.
func WithToolName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolNameKey{}, name)
}

func toolNameFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(toolNameKey{}).(string); ok {
		return v
	}
	return ""
}

type questionKey struct{}

// WithQuestion returns a context carrying the natural-language question that
// produced the SQL under validation.
func WithQuestion(ctx context.Context, question string) context.Context {
	return context.WithValue(ctx, questionKey{}, question)
}

func questionFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(questionKey{}).(string); ok {
		return v
	}
	return ""
}

// QueryService gates SQL execution behind the validation pipeline: nothing
// reaches the executor unless every rule passed.
type QueryService struct {
	validator port.SQLValidator
	executor  port.QueryExecutor
	auditor   port.QueryAuditor
	logger    *slog.Logger
	masks     map[string]domain.MaskType // column-name → mask-type (nil = no masking)
	tracer    trace.Tracer
	inst      port.Instrumentation
}

func NewQueryService(validator port.SQLValidator, executor port.QueryExecutor, auditor port.QueryAuditor, logger *slog.Logger, masks map[string]domain.MaskType, tracer trace.Tracer, inst port.Instrumentation) *QueryService {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &QueryService{
		validator: validator,
		executor:  executor,
		auditor:   auditor,
		logger:    logger,
		masks:     masks,
		tracer:    tracer,
		inst:      inst,
	}
}

// Validate runs the rule pipeline without executing anything. The verdict is
// audited either way; a nil return means all rules passed.
func (s *QueryService) Validate(ctx context.Context, sql string) error {
	err := s.validator.ExecuteRules(sql)

	entry := port.AuditEntry{
		Tool:     toolNameFromCtx(ctx),
		Question: questionFromCtx(ctx),
		SQL:      sql,
		Valid:    err == nil,
		Verdict:  domain.AllRulesPassed,
	}
	if err != nil {
		entry.Verdict = err.Error()
		s.noteRejection(ctx, sql, err)
	}
	s.auditor.Record(ctx, entry)

	return err
}

// Execute validates sql and, if every rule passes, runs it.
func (s *QueryService) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	ctx, span := s.tracer.Start(ctx, "QueryService.Execute",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.statement", sql),
		),
	)
	defer span.End()

	if err := s.check(ctx, span, sql); err != nil {
		return nil, err
	}
	return s.run(ctx, span, sql)
}

// Explain validates sql as if it were to be executed, then runs it under
// EXPLAIN. The prefix is added after validation so the pipeline always sees
// the bare SELECT.
func (s *QueryService) Explain(ctx context.Context, sql string, analyze bool) ([]map[string]any, error) {
	ctx, span := s.tracer.Start(ctx, "QueryService.Explain",
		trace.WithAttributes(attribute.String("db.statement", sql)),
	)
	defer span.End()

	if err := s.check(ctx, span, sql); err != nil {
		return nil, err
	}
	prefix := "EXPLAIN "
	if analyze {
		prefix = "EXPLAIN ANALYZE "
	}
	return s.run(ctx, span, prefix+sql)
}

// check runs the rule pipeline, recording a failed verdict in the audit log,
// metrics and the span. The violation is returned unchanged so the caller can
// surface its message verbatim.
func (s *QueryService) check(ctx context.Context, span trace.Span, sql string) error {
	err := s.validator.ExecuteRules(sql)
	if err == nil {
		return nil
	}

	s.noteRejection(ctx, sql, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	s.auditor.Record(ctx, port.AuditEntry{
		Tool:     toolNameFromCtx(ctx),
		Question: questionFromCtx(ctx),
		SQL:      sql,
		Valid:    false,
		Verdict:  err.Error(),
	})
	return err
}

// run executes already-validated SQL and post-processes the results.
func (s *QueryService) run(ctx context.Context, span trace.Span, sql string) ([]map[string]any, error) {
	start := time.Now()
	results, err := s.executor.Execute(ctx, sql)
	durationMS := time.Since(start).Milliseconds()

	s.inst.RecordQueryDuration(ctx, float64(durationMS))

	s.auditor.Record(ctx, port.AuditEntry{
		Tool:         toolNameFromCtx(ctx),
		Question:     questionFromCtx(ctx),
		SQL:          sql,
		Valid:        true,
		Verdict:      domain.AllRulesPassed,
		RowsReturned: len(results),
		DurationMS:   durationMS,
		Err:          err,
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementQueryErrors(ctx)
		return results, err
	}

	s.inst.IncrementQueryCount(ctx)
	span.SetAttributes(attribute.Int("db.response.rows", len(results)))
	domain.MaskRows(results, s.masks)

	return results, nil
}

func (s *QueryService) noteRejection(ctx context.Context, sql string, err error) {
	rule := "unknown"
	var v *domain.Violation
	if errors.As(err, &v) {
		rule = v.Rule
	}
	s.logger.WarnContext(ctx, "query validation rejected",
		slog.String("db.statement", sql),
		slog.String("rule", rule),
		slog.String("verdict", err.Error()),
	)
	s.inst.IncrementValidationFailures(ctx, rule)
}

// noopAuditor keeps the service nil-safe when no audit log is configured.
type noopAuditor struct{}

func (noopAuditor) Record(context.Context, port.AuditEntry) {}
func (noopAuditor) Close() error                            { return nil }
