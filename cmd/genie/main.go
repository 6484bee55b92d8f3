package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sqlgenie/genie/internal/adapter/llm"
	"github.com/sqlgenie/genie/internal/adapter/mcp"
	"github.com/sqlgenie/genie/internal/adapter/postgres"
	"github.com/sqlgenie/genie/internal/audit"
	"github.com/sqlgenie/genie/internal/config"
	"github.com/sqlgenie/genie/internal/core/domain"
	"github.com/sqlgenie/genie/internal/core/port"
	"github.com/sqlgenie/genie/internal/core/service"
	"github.com/sqlgenie/genie/internal/policy"
	"github.com/sqlgenie/genie/internal/telemetry"
	"go.opentelemetry.io/otel"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	overrides, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr — stdout is reserved for the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	logger.Info("starting genie",
		slog.String("version", version),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.Bool("read_only", cfg.ReadOnly),
		slog.Int("max_rows", cfg.MaxRows),
		slog.String("query_timeout", cfg.QueryTimeout.String()),
		slog.String("database_url", redactDSN(cfg.DatabaseURL)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Telemetry (optional).
	tracer := telemetry.NoopTracer()
	inst := telemetry.NoopInstruments()
	if cfg.OTelEnabled {
		provider, err := telemetry.Init(ctx, "genie", version)
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() { _ = provider.Shutdown(context.Background()) }()
		tracer = otel.Tracer("github.com/sqlgenie/genie")
		inst = telemetry.NewInstruments()
		logger.Info("telemetry enabled")
	}

	// Policy file (optional): whitelist additions, schema text, masks.
	allowedTables := cfg.AllowedTables
	var masks map[string]domain.MaskType
	schemaText := ""
	if cfg.PolicyFile != "" {
		pol, err := policy.LoadFromFile(cfg.PolicyFile)
		if err != nil {
			return fmt.Errorf("loading policy: %w", err)
		}
		allowedTables = append(allowedTables, pol.AllowedTables...)
		masks = pol.Masks()
		schemaText = pol.SchemaText()
		logger.Info("policy loaded", slog.String("file", cfg.PolicyFile))
	}

	// Fail closed: with no whitelist every table reference would be rejected,
	// which is never what the operator meant.
	if len(allowedTables) == 0 {
		return fmt.Errorf("no allowed tables configured (set ALLOWED_TABLES or list allowed_tables in the policy file)")
	}

	// Validation pipeline.
	validator := domain.NewRuleExecutor(
		domain.DefaultRules(allowedTables, cfg.InjectionCheck),
		domain.WithMaxQueryLength(cfg.MaxQueryLength),
	)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxConns:        cfg.PoolMaxConns,
		MinConns:        cfg.PoolMinConns,
		MaxConnLifetime: cfg.PoolMaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	logger.Info("database pool connected", slog.String("db.system", "postgresql"))

	// Executor, optionally wrapped for safe operating modes.
	var executor port.QueryExecutor = postgres.NewExecutor(pool, cfg.ReadOnly, cfg.MaxRows, cfg.QueryTimeout)
	if cfg.ExplainOnly {
		executor = postgres.NewExplainOnlyExecutor(executor)
		logger.Info("explain-only mode: queries return plans, not data")
	}
	if cfg.DryRun {
		executor = postgres.DryRunExecutor{}
		logger.Info("dry-run mode: queries are validated but not executed")
	}

	// Audit trail (optional).
	var auditor port.QueryAuditor = audit.NoopAuditor{}
	if cfg.AuditLog != "" {
		fa, err := audit.NewFileAuditor(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer func() { _ = fa.Close() }()
		auditor = fa
		logger.Info("audit log enabled", slog.String("file", cfg.AuditLog))
	}

	querySvc := service.NewQueryService(validator, executor, auditor, logger, masks, tracer, inst)

	// LLM-backed tools (optional): without a model only the SQL tools are served.
	var askSvc *service.AskService
	var chat port.ChatCompleter
	if cfg.LLMModel != "" {
		client, err := llm.New(cfg.LLMProvider, cfg.LLMEndpoint, cfg.LLMModel, cfg.LLMAPIKey, logger)
		if err != nil {
			return fmt.Errorf("creating LLM client: %w", err)
		}
		askSvc = service.NewAskService(client, querySvc, schemaText, logger, tracer, inst)
		chat = client
		logger.Info("llm enabled",
			slog.String("provider", cfg.LLMProvider),
			slog.String("model", cfg.LLMModel),
		)
	} else {
		logger.Info("no LLM model configured; ask/chat tools disabled")
	}

	mcpServer := mcp.NewServer(version, askSvc, querySvc, chat, logger, tracer, inst)

	if cfg.Transport == "http" {
		return serveHTTP(ctx, mcpServer, cfg, logger)
	}

	stdioServer := mcpserver.NewStdioServer(mcpServer)

	logger.Info("serving MCP over stdio")
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// serveHTTP runs the MCP server over streamable HTTP with bearer auth.
func serveHTTP(ctx context.Context, mcpServer *mcpserver.MCPServer, cfg *config.Config, logger *slog.Logger) error {
	httpServer := mcpserver.NewStreamableHTTPServer(
		mcpServer,
		mcpserver.WithStateLess(true),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/mcp", recoveryMiddleware(
		bearerAuthMiddleware(httpServer, cfg.HTTPBearerToken),
		logger,
	))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP over http", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// redactDSN hides the password in a connection string for logging.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "***"
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
