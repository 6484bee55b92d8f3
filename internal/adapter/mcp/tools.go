package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sqlgenie/genie/internal/core/domain"
	"github.com/sqlgenie/genie/internal/core/port"
	"github.com/sqlgenie/genie/internal/core/service"
)

// Server metadata
const serverName = "genie"

// Tool descriptions
const (
	descAsk = "Answer a natural-language question about the database. " +
		"The question is turned into a SQL query, the query is checked against " +
		"the safety rules (SELECT-only, whitelisted tables), and the results are returned " +
		"together with the generated SQL. Rejected queries return the rule's verdict instead."

	descAskParam = "The question to answer, in plain language"

	descQuery = "Execute a read-only SQL query and return results as a JSON array of objects. " +
		"Every query passes the same validation pipeline as generated SQL: " +
		"SELECT statements only, whitelisted tables only. " +
		"A server-side row limit and query timeout are enforced."

	descQueryParam = "SQL query to execute (SELECT statements only)"

	descValidateSQL = "Check a SQL query against the safety rules without executing it. " +
		"Returns {\"valid\": true/false, \"message\": verdict}. " +
		"Use this to test a query before running it."

	descValidateSQLParam = "SQL query to validate"

	descExplainQuery = "Show the PostgreSQL execution plan for a SQL query. " +
		"The query is validated first, so only SELECT statements on whitelisted tables can be explained. " +
		"Supports ANALYZE to include actual execution statistics (the query WILL be executed)."

	descExplainQuerySQL = "The SELECT query to explain (without the EXPLAIN keyword)"

	descDescribeSchema = "Return the database schema description available to SQL generation: " +
		"tables, columns, and their business meaning. " +
		"This is the same text the model sees, so queries written against it will validate."

	descChat = "General conversation with the assistant, without touching the database."

	descChatParam = "The message to send"
)

func RegisterTools(s *server.MCPServer, ask *service.AskService, query *service.QueryService, chat port.ChatCompleter) {
	if ask != nil {
		s.AddTool(
			mcp.NewTool("ask",
				mcp.WithDescription(descAsk),
				mcp.WithString("question",
					mcp.Required(),
					mcp.Description(descAskParam),
				),
			),
			askHandler(ask),
		)

		s.AddTool(
			mcp.NewTool("describe_schema",
				mcp.WithDescription(descDescribeSchema),
			),
			describeSchemaHandler(ask),
		)
	}

	s.AddTool(
		mcp.NewTool("query",
			mcp.WithDescription(descQuery),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descQueryParam),
			),
		),
		queryHandler(query),
	)

	s.AddTool(
		mcp.NewTool("validate_sql",
			mcp.WithDescription(descValidateSQL),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descValidateSQLParam),
			),
		),
		validateSQLHandler(query),
	)

	s.AddTool(
		mcp.NewTool("explain_query",
			mcp.WithDescription(descExplainQuery),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descExplainQuerySQL),
			),
			mcp.WithBoolean("analyze",
				mcp.Description("Include actual execution statistics (executes the query). Defaults to false."),
			),
		),
		explainQueryHandler(query),
	)

	if chat != nil {
		s.AddTool(
			mcp.NewTool("chat",
				mcp.WithDescription(descChat),
				mcp.WithString("message",
					mcp.Required(),
					mcp.Description(descChatParam),
				),
			),
			chatHandler(chat),
		)
	}
}

func askHandler(ask *service.AskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, ok := request.GetArguments()["question"].(string)
		if !ok || question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		ctx = service.WithToolName(ctx, "ask")
		result, err := ask.Ask(ctx, question)
		if err != nil {
			// The verdict cites the generated SQL so the caller can see what
			// was refused.
			if result != nil && result.SQL != "" {
				return mcp.NewToolResultError(fmt.Sprintf("%v (generated SQL: %s)", err, result.SQL)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func describeSchemaHandler(ask *service.AskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(ask.Schema()), nil
	}
}

func queryHandler(query *service.QueryService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok || sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		ctx = service.WithToolName(ctx, "query")
		results, err := query.Execute(ctx, sql)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%v", err)), nil
		}

		data, err := json.Marshal(results)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

// validationVerdict is the validate_sql response body.
type validationVerdict struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

func validateSQLHandler(query *service.QueryService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok || sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		ctx = service.WithToolName(ctx, "validate_sql")
		verdict := validationVerdict{Valid: true, Message: domain.AllRulesPassed}
		if err := query.Validate(ctx, sql); err != nil {
			verdict = validationVerdict{Valid: false, Message: err.Error()}
		}

		data, err := json.Marshal(verdict)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func explainQueryHandler(query *service.QueryService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok || sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		analyze, _ := request.GetArguments()["analyze"].(bool)

		ctx = service.WithToolName(ctx, "explain_query")
		results, err := query.Explain(ctx, sql, analyze)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%v", err)), nil
		}

		data, err := json.Marshal(results)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func chatHandler(chat port.ChatCompleter) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, ok := request.GetArguments()["message"].(string)
		if !ok || message == "" {
			return mcp.NewToolResultError("message is required"), nil
		}

		reply, err := chat.Chat(ctx, message)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
		}

		return mcp.NewToolResultText(reply), nil
	}
}
