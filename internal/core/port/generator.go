package port

import "context"

// SQLGenerator turns a natural-language question into a single SQL query
// string, given a textual description of the schema it may reference. The
// returned string is untrusted and must pass validation before execution.
type SQLGenerator interface {
	GenerateSQL(ctx context.Context, question, schema string) (string, error)
}

// ChatCompleter answers free-form chat prompts with no SQL involvement.
type ChatCompleter interface {
	Chat(ctx context.Context, prompt string) (string, error)
}
