package domain

// AllRulesPassed is the verdict message reported when every rule accepts the
// query.
const AllRulesPassed = "All rules passed."

// DefaultMaxQueryLength bounds worst-case parse cost on adversarial input.
const DefaultMaxQueryLength = 10000

// RuleExecutor runs an ordered rule list against a SQL string, failing fast
// on the first violation. Order is significant: cheaper, coarser checks go
// first so known-bad input is refused before any parsing happens.
//
// A RuleExecutor is immutable after construction and safe for concurrent use;
// each call reads only its own input and the fixed rule list.
type RuleExecutor struct {
	rules       []Rule
	maxQueryLen int
}

type ExecutorOption func(*RuleExecutor)

// WithMaxQueryLength overrides the input length cap. n <= 0 disables it.
func WithMaxQueryLength(n int) ExecutorOption {
	return func(e *RuleExecutor) { e.maxQueryLen = n }
}

func NewRuleExecutor(rules []Rule, opts ...ExecutorOption) *RuleExecutor {
	e := &RuleExecutor{rules: rules, maxQueryLen: DefaultMaxQueryLength}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteRules returns nil when every rule passes, or the first failing
// rule's violation unchanged. Rules after a failure are never invoked.
func (e *RuleExecutor) ExecuteRules(sql string) error {
	if e.maxQueryLen > 0 && len(sql) > e.maxQueryLen {
		return &Violation{Rule: "max_length", Message: "Query exceeds maximum allowed length."}
	}
	for _, r := range e.rules {
		if err := r.Validate(sql); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRules builds the standard pipeline: keyword scan, optional injection
// heuristic, statement-type check, table whitelist.
func DefaultRules(allowedTables []string, injectionCheck bool) []Rule {
	rules := []Rule{NewForbiddenKeywordsRule()}
	if injectionCheck {
		rules = append(rules, NewInjectionHeuristicRule())
	}
	return append(rules,
		NewOnlySelectStatementsRule(),
		NewWhitelistedTablesRule(allowedTables),
	)
}
