package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sqlgenie/genie/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// AskService answers natural-language questions about the database: it asks
// the language model for SQL, pushes the untrusted result through the
// validation pipeline and only then executes it.
type AskService struct {
	generator port.SQLGenerator
	query     *QueryService
	schema    string // schema description handed to the language model
	logger    *slog.Logger
	tracer    trace.Tracer
	inst      port.Instrumentation
}

func NewAskService(generator port.SQLGenerator, query *QueryService, schema string, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *AskService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &AskService{
		generator: generator,
		query:     query,
		schema:    schema,
		logger:    logger,
		tracer:    tracer,
		inst:      inst,
	}
}

// AskResult carries the generated SQL alongside the rows so the caller can
// show which query actually ran. SQL is populated even when execution was
// refused, for the refusal message to make sense.
type AskResult struct {
	Question string           `json:"question"`
	SQL      string           `json:"sql"`
	Rows     []map[string]any `json:"rows"`
}

func (s *AskService) Ask(ctx context.Context, question string) (*AskResult, error) {
	ctx, span := s.tracer.Start(ctx, "AskService.Ask",
		trace.WithAttributes(attribute.String("genie.question", question)),
	)
	defer span.End()

	ctx = WithQuestion(ctx, question)

	start := time.Now()
	sql, err := s.generator.GenerateSQL(ctx, question, s.schema)
	s.inst.RecordGenerationDuration(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("generating SQL: %w", err)
	}

	s.logger.InfoContext(ctx, "sql generated",
		slog.String("db.statement", sql),
		slog.Duration("generation_time", time.Since(start)),
	)

	rows, err := s.query.Execute(ctx, sql)
	if err != nil {
		// Keep the SQL in the result so the refusal can cite it.
		return &AskResult{Question: question, SQL: sql}, err
	}

	return &AskResult{Question: question, SQL: sql, Rows: rows}, nil
}

// Schema returns the schema description shown to the language model.
func (s *AskService) Schema() string { return s.schema }
