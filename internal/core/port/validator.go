package port

// SQLValidator decides whether a SQL statement may be executed. A nil return
// means every configured rule passed; a non-nil error's message is the
// user-facing refusal reason, surfaced verbatim.
type SQLValidator interface {
	ExecuteRules(sql string) error
}
