package main

import (
	"flag"

	"github.com/sqlgenie/genie/internal/config"
)

// parseFlags builds config.Overrides from CLI args. Only flags the user
// actually passed are set, so env vars keep their values otherwise.
func parseFlags(args []string) (config.Overrides, error) {
	fs := flag.NewFlagSet("genie", flag.ContinueOnError)

	databaseURL := fs.String("database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	maxRows := fs.Int("max-rows", 0, "maximum rows returned per query (overrides MAX_ROWS)")
	queryTimeout := fs.Duration("query-timeout", 0, "per-query timeout (overrides QUERY_TIMEOUT)")
	maxQueryLength := fs.Int("max-query-length", 0, "maximum accepted query length in bytes (overrides MAX_QUERY_LENGTH)")
	allowedTables := fs.String("allowed-tables", "", "comma-separated table whitelist (overrides ALLOWED_TABLES)")
	policyFile := fs.String("policy-file", "", "path to policy YAML (overrides POLICY_FILE)")
	llmProvider := fs.String("llm-provider", "", "LLM provider: openai or anthropic (overrides LLM_PROVIDER)")
	llmEndpoint := fs.String("llm-endpoint", "", "base URL for OpenAI-compatible endpoints (overrides LLM_ENDPOINT)")
	llmModel := fs.String("llm-model", "", "model name for SQL generation (overrides LLM_MODEL)")
	transport := fs.String("transport", "", "transport: stdio or http (overrides TRANSPORT)")
	httpAddr := fs.String("http-addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	httpBearerToken := fs.String("http-bearer-token", "", "bearer token for HTTP transport (overrides HTTP_BEARER_TOKEN)")
	otelEnabled := fs.Bool("otel", false, "enable OpenTelemetry tracing and metrics")
	dryRun := fs.Bool("dry-run", false, "validate queries but do not execute them")
	explainOnly := fs.Bool("explain-only", false, "run every query under EXPLAIN")
	auditLog := fs.String("audit-log", "", "path to NDJSON audit log file")
	poolMaxConns := fs.Int("pool-max-conns", 0, "maximum pool connections (overrides POOL_MAX_CONNS)")
	poolMinConns := fs.Int("pool-min-conns", -1, "minimum pool connections (overrides POOL_MIN_CONNS)")
	poolMaxConnLifetime := fs.Duration("pool-max-conn-lifetime", 0, "maximum connection lifetime (overrides POOL_MAX_CONN_LIFETIME)")

	if err := fs.Parse(args); err != nil {
		return config.Overrides{}, err
	}

	var o config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "database-url":
			o.DatabaseURL = databaseURL
		case "log-level":
			o.LogLevel = logLevel
		case "max-rows":
			o.MaxRows = maxRows
		case "query-timeout":
			o.QueryTimeout = queryTimeout
		case "max-query-length":
			o.MaxQueryLength = maxQueryLength
		case "allowed-tables":
			o.AllowedTables = allowedTables
		case "policy-file":
			o.PolicyFile = policyFile
		case "llm-provider":
			o.LLMProvider = llmProvider
		case "llm-endpoint":
			o.LLMEndpoint = llmEndpoint
		case "llm-model":
			o.LLMModel = llmModel
		case "transport":
			o.Transport = transport
		case "http-addr":
			o.HTTPAddr = httpAddr
		case "http-bearer-token":
			o.HTTPBearerToken = httpBearerToken
		case "pool-max-conns":
			v := int32(*poolMaxConns)
			o.PoolMaxConns = &v
		case "pool-min-conns":
			v := int32(*poolMinConns)
			o.PoolMinConns = &v
		case "pool-max-conn-lifetime":
			o.PoolMaxConnLifetime = poolMaxConnLifetime
		}
	})

	o.OTelEnabled = *otelEnabled
	o.DryRun = *dryRun
	o.ExplainOnly = *explainOnly
	o.AuditLog = *auditLog

	return o, nil
}
