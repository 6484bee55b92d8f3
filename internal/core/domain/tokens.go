package domain

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// token is one lexical unit of a SQL statement as reported by the PostgreSQL
// scanner. The scanner discards whitespace and flattens the input, so a
// parenthesized subquery appears as a '(' ... ')' run inside the same linear
// stream, in source order.
type token struct {
	text    string
	kind    pg_query.Token
	keyword bool
}

// scanTokens lexes sql into its significant tokens. Comments are dropped so
// callers can treat adjacency in the result as adjacency in the statement.
func scanTokens(sql string) ([]token, error) {
	res, err := pg_query.Scan(sql)
	if err != nil {
		return nil, err
	}
	toks := make([]token, 0, len(res.Tokens))
	for _, st := range res.Tokens {
		if st.Token == pg_query.Token_SQL_COMMENT || st.Token == pg_query.Token_C_COMMENT {
			continue
		}
		toks = append(toks, token{
			text:    sql[st.Start:st.End],
			kind:    st.Token,
			keyword: st.KeywordKind != pg_query.KeywordKind_NO_KEYWORD,
		})
	}
	return toks, nil
}

// splitStatements breaks sql into its semicolon-separated statements using
// the scanner, so boundaries inside string literals are not miscounted.
func splitStatements(sql string) ([]string, error) {
	return pg_query.SplitWithScanner(sql, true)
}

// normalizeIdent strips surrounding double-quote, single-quote or backtick
// delimiters from an identifier and case-folds it.
func normalizeIdent(s string) string {
	s = strings.Trim(s, `"'`+"`")
	return strings.ToLower(s)
}
