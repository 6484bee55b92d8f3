package domain

import "strings"

// forbiddenKeywords are stored lower-case with a trailing space so that a
// keyword embedded in a longer identifier does not match ("create " must not
// match "created_at"). "xp_" covers SQL Server extended procedures.
var forbiddenKeywords = []string{
	"insert ", "update ", "delete ", "drop ", "alter ",
	"truncate ", "create ", "exec ", "xp_",
}

// ForbiddenKeywordsRule rejects any query containing a destructive SQL
// keyword anywhere in its text, including inside comments, string literals
// and subqueries. The scan is deliberately unanchored and over-matching: it
// is the cheap first line of defense and must hold even when the structural
// parser behind the later rules is fooled or fails.
type ForbiddenKeywordsRule struct{}

func NewForbiddenKeywordsRule() ForbiddenKeywordsRule { return ForbiddenKeywordsRule{} }

func (ForbiddenKeywordsRule) Name() string { return "forbidden_keywords" }

func (r ForbiddenKeywordsRule) Validate(sql string) error {
	lower := strings.ToLower(strings.TrimSpace(sql))
	for _, kw := range forbiddenKeywords {
		if strings.Contains(lower, kw) {
			return &Violation{
				Rule:    r.Name(),
				Message: "Forbidden SQL keywords detected. Only SELECT queries are allowed.",
			}
		}
	}
	return nil
}
