package nlquery

import "strings"

// MatchResult is the outcome of rule resolution. NoMatch is not an
// error: it means no rule recognized the question and the caller should
// fall through to generation.
type MatchResult struct {
	Matched bool
	Rule    string
	Query   string
}

// NoMatch is the sentinel result returned when no rule fires.
var NoMatch = MatchResult{}

// Normalize case-folds and trims a question. Applying it twice yields
// the same string.
func Normalize(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// Resolve normalizes the question and evaluates the rule set in
// declaration order, short-circuiting on the first rule that matches.
// It is pure: no I/O, no schema access, and it never fails — an empty
// or unrecognized question simply resolves to NoMatch.
func Resolve(question string) MatchResult {
	q := Normalize(question)
	if q == "" {
		return NoMatch
	}
	for _, rule := range queryRules {
		if sql, ok := rule.Apply(q); ok {
			return MatchResult{Matched: true, Rule: rule.Name, Query: sql}
		}
	}
	return NoMatch
}
