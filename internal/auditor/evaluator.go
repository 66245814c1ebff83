package auditor

import (
	"sqlcheck/internal/classifier"
)

// MatchResult is the outcome of testing one rule against one statement.
type MatchResult struct {
	Fired   bool
	Count   int
	Matched string
}

// Evaluate tests rule against a statement's facts.
// The guard short-circuits before any pattern work.
func Evaluate(rule Rule, f *classifier.Facts) MatchResult {
	if rule.Guard != nil && !rule.Guard(f) {
		return MatchResult{}
	}

	threshold := rule.threshold()
	limit := 0
	if threshold == 1 {
		limit = 1
	}

	m := rule.Matcher.match(f, limit)
	return MatchResult{
		Fired:   m.Count >= threshold,
		Count:   m.Count,
		Matched: m.Matched,
	}
}
