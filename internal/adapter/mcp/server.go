// Package mcp exposes the validation pipeline over the Model Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sqlgenie/genie/internal/core/port"
	"github.com/sqlgenie/genie/internal/core/service"
	"go.opentelemetry.io/otel/trace"
)

// NewServer creates an MCPServer with tools and logging hooks. The ask
// service is optional: without an LLM the natural-language tools are not
// registered and the server still serves query, validate_sql and
// explain_query.
func NewServer(version string, ask *service.AskService, query *service.QueryService, chat port.ChatCompleter, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithHooks(ToolCallHooks(logger, tracer, inst)),
	)

	RegisterTools(s, ask, query, chat)

	return s
}
