package domain

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// OnlySelectStatementsRule splits the input into statements and requires the
// leading keyword of every one of them to be SELECT. This blocks
// multi-statement injection ("SELECT ...; DROP TABLE ...") and any DDL/DML
// the keyword scan missed through unusual spacing or casing.
type OnlySelectStatementsRule struct{}

func NewOnlySelectStatementsRule() OnlySelectStatementsRule { return OnlySelectStatementsRule{} }

func (OnlySelectStatementsRule) Name() string { return "only_select" }

func (r OnlySelectStatementsRule) Validate(sql string) error {
	stmts, err := splitStatements(sql)
	if err != nil {
		return r.parseError(err)
	}
	if len(stmts) == 0 {
		return &Violation{Rule: r.Name(), Message: "No valid SQL statements found."}
	}

	for _, stmt := range stmts {
		toks, err := scanTokens(stmt)
		if err != nil {
			return r.parseError(err)
		}
		if len(toks) == 0 {
			return &Violation{
				Rule:    r.Name(),
				Message: "Invalid SQL statement structure: cannot determine statement type.",
			}
		}
		if first := toks[0]; first.kind != pg_query.Token_SELECT {
			return &Violation{
				Rule: r.Name(),
				Message: fmt.Sprintf("Forbidden statement type '%s' detected. Only SELECT queries are allowed.",
					strings.ToUpper(first.text)),
			}
		}
	}
	return nil
}

func (r OnlySelectStatementsRule) parseError(err error) *Violation {
	return &Violation{
		Rule:    r.Name(),
		Message: fmt.Sprintf("SQL parsing error during statement type check: %v", err),
	}
}
