package auditor

import (
	"sqlcheck/internal/model"
)

// Tally accumulates run-wide counters. It is an explicit value owned by
// whoever drives the run; nothing in this package keeps global counts.
type Tally struct {
	cfg     model.Config
	summary model.Summary
}

// NewTally starts an empty tally for cfg.
func NewTally(cfg model.Config) *Tally {
	return &Tally{cfg: cfg, summary: model.NewSummary()}
}

// Admit filters a match through the risk tier. A fired rule below the
// tier is counted as suppressed and dropped. An admitted finding bumps the
// totals exactly once, however many times the pattern matched.
func (t *Tally) Admit(rule Rule, res MatchResult) (model.Finding, bool) {
	if !res.Fired {
		return model.Finding{}, false
	}
	if !t.cfg.MinRisk.Admits(rule.Risk) {
		t.summary.Suppressed++
		return model.Finding{}, false
	}

	t.summary.Total++
	t.summary.ByRisk[rule.Risk]++
	t.summary.ByCategory[rule.Category]++

	return model.Finding{
		RuleID:   rule.ID,
		Title:    rule.Title,
		Category: rule.Category,
		Risk:     rule.Risk,
		Count:    res.Count,
		Matched:  res.Matched,
		Message:  rule.Message,
	}, true
}

// Statement records that one more statement was processed.
func (t *Tally) Statement() {
	t.summary.Statements++
}

// Summary returns a snapshot of the totals.
func (t *Tally) Summary() model.Summary {
	s := t.summary
	s.ByRisk = make(map[model.Risk]int, len(t.summary.ByRisk))
	for k, v := range t.summary.ByRisk {
		s.ByRisk[k] = v
	}
	s.ByCategory = make(map[model.Category]int, len(t.summary.ByCategory))
	for k, v := range t.summary.ByCategory {
		s.ByCategory[k] = v
	}
	return s
}
