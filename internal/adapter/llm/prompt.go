// Package llm adapts chat-completion providers into SQL generation and
// general chat for the services layer.
package llm

import (
	"fmt"
	"strings"
)

const sqlSystemPrompt = "You are a SQL expert for a PostgreSQL database. " +
	"Convert natural language to SQL queries. Only use tables and columns " +
	"explicitly mentioned in the provided schema. Do not make up names. " +
	"Ensure correct PostgreSQL syntax. Respond with only the SQL query, " +
	"no explanation."

const chatSystemPrompt = "You are a helpful AI assistant. Answer general " +
	"questions concisely and clearly."

// sqlPrompt carries the schema with every question; the model never sees the
// database directly.
func sqlPrompt(question, schema string) string {
	return fmt.Sprintf("Database schema:\n%s\n\nUser's question: %s\n\nSQL Query:", schema, question)
}

// StripSQLFences removes a markdown code fence wrapping model output.
// Models often return ```sql ... ``` even when told not to.
func StripSQLFences(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "```sql") && strings.HasSuffix(lower, "```") && len(s) >= len("```sql")+len("```"):
		s = s[len("```sql") : len(s)-len("```")]
	case strings.HasPrefix(lower, "```") && strings.HasSuffix(lower, "```") && len(s) >= 2*len("```"):
		s = s[len("```") : len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}
