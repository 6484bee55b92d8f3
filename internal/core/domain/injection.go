package domain

import (
	"fmt"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// InjectionHeuristicRule runs libinjection over the string literals of the
// query. A literal carrying a SQLi fingerprint usually means the language
// model pasted attacker-controlled text straight into the query. The whole
// query is not scanned: libinjection would flag legitimate SQL.
type InjectionHeuristicRule struct{}

func NewInjectionHeuristicRule() InjectionHeuristicRule { return InjectionHeuristicRule{} }

func (InjectionHeuristicRule) Name() string { return "injection_heuristic" }

func (r InjectionHeuristicRule) Validate(sql string) error {
	res, err := pg_query.Scan(sql)
	if err != nil {
		// Input that cannot be lexed cannot be cleared either.
		return &Violation{
			Rule:    r.Name(),
			Message: fmt.Sprintf("SQL parsing error during injection check: %v", err),
		}
	}
	for _, st := range res.Tokens {
		if st.Token != pg_query.Token_SCONST {
			continue
		}
		lit := strings.Trim(sql[st.Start:st.End], "'")
		if isSQLi, _ := libinjection.IsSQLi(lit); isSQLi {
			return &Violation{
				Rule:    r.Name(),
				Message: "Suspected SQL injection in string literal.",
			}
		}
	}
	return nil
}
