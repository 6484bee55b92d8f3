// Package domain contains the SQL safety rules that decide whether
// machine-generated SQL may be executed against a live database.
package domain

// Rule inspects a SQL string and reports whether it is safe to execute.
// Implementations never mutate the input and never panic: failures of the
// underlying parser are converted into failing verdicts.
type Rule interface {
	// Name identifies the rule in logs, metrics and audit entries.
	Name() string

	// Validate returns nil when sql passes the rule, or a *Violation whose
	// Error() is the user-facing refusal message.
	Validate(sql string) error
}

// Violation is a failed verdict from a single rule.
type Violation struct {
	Rule    string // rule name, for metrics and audit
	Message string // user-facing reason the query was refused
}

func (v *Violation) Error() string { return v.Message }
