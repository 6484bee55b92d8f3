package domain

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// WhitelistedTablesRule checks every FROM/JOIN target of the first statement
// against an immutable set of allowed table names. Allowed names are
// case-folded at construction; candidates are quote-stripped and case-folded
// before comparison.
//
// Only the first statement is inspected. Multi-statement input whose
// statements are not all SELECTs is rejected by OnlySelectStatementsRule
// before this rule runs, so the gap is latent rather than live, but it stays
// a documented limitation of this rule on its own.
type WhitelistedTablesRule struct {
	allowed map[string]struct{}
}

func NewWhitelistedTablesRule(allowedTables []string) *WhitelistedTablesRule {
	allowed := make(map[string]struct{}, len(allowedTables))
	for _, t := range allowedTables {
		if t = normalizeIdent(strings.TrimSpace(t)); t != "" {
			allowed[t] = struct{}{}
		}
	}
	return &WhitelistedTablesRule{allowed: allowed}
}

func (*WhitelistedTablesRule) Name() string { return "whitelisted_tables" }

func (r *WhitelistedTablesRule) Validate(sql string) error {
	stmts, err := splitStatements(sql)
	if err != nil {
		return r.parseError(err)
	}
	if len(stmts) == 0 {
		return &Violation{Rule: r.Name(), Message: "No valid SQL statements found for table check."}
	}

	toks, err := scanTokens(stmts[0])
	if err != nil {
		return r.parseError(err)
	}

	for i, t := range toks {
		if !t.keyword || (t.kind != pg_query.Token_FROM && t.kind != pg_query.Token_JOIN) {
			continue
		}
		if i+1 >= len(toks) {
			return &Violation{Rule: r.Name(), Message: "Could not identify table name after FROM/JOIN clause."}
		}
		// A parenthesized subquery used as a table source is not a table name.
		// Its constituent SELECT sits in the same flattened stream, so its own
		// FROM/JOIN clauses are still visited by this loop.
		if toks[i+1].kind == pg_query.Token_ASCII_40 {
			continue
		}
		if name := tableName(toks[i+1:]); !r.isAllowed(name) {
			return &Violation{
				Rule:    r.Name(),
				Message: fmt.Sprintf("Access to table/object '%s' is not allowed.", name),
			}
		}
	}
	return nil
}

// isAllowed accepts a candidate when either its full (possibly
// schema-qualified) name or its final segment is whitelisted.
func (r *WhitelistedTablesRule) isAllowed(name string) bool {
	if _, ok := r.allowed[name]; ok {
		return true
	}
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			_, ok := r.allowed[name[i+1:]]
			return ok
		}
	}
	return false
}

// tableName reads the table reference starting at toks[0], joining a dotted
// identifier chain ("dbo"."client" becomes dbo.client) into one normalized
// name. Unreserved keywords are legal table names, so any leading token is
// accepted as the first segment.
func tableName(toks []token) string {
	name := normalizeIdent(toks[0].text)
	for i := 1; i+1 < len(toks); i += 2 {
		if toks[i].kind != pg_query.Token_ASCII_46 {
			break
		}
		name += "." + normalizeIdent(toks[i+1].text)
	}
	return name
}

func (r *WhitelistedTablesRule) parseError(err error) *Violation {
	return &Violation{
		Rule:    r.Name(),
		Message: fmt.Sprintf("SQL parsing error during table whitelist check: %v", err),
	}
}
