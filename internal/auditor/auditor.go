package auditor

import (
	"context"

	"sqlcheck/internal/classifier"
	"sqlcheck/internal/model"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Auditor runs a catalog over statements and assembles the report.
type Auditor struct {
	catalog *Catalog
	cfg     model.Config
}

// NewAuditor validates cfg once, before any statement is seen.
func NewAuditor(catalog *Catalog, cfg model.Config) (*Auditor, error) {
	if catalog == nil {
		return nil, errors.New("nil catalog")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &Auditor{catalog: catalog, cfg: cfg}, nil
}

// Catalog returns the catalog in use.
func (a *Auditor) Catalog() *Catalog {
	return a.catalog
}

// evaluate runs every rule, in catalog order, against one statement.
// It has no side effects.
func (a *Auditor) evaluate(stmt model.Statement) []MatchResult {
	facts := classifier.Analyze(stmt.SQL)
	results := make([]MatchResult, len(a.catalog.rules))
	for i, rule := range a.catalog.rules {
		results[i] = Evaluate(rule, facts)
	}
	return results
}

// assemble filters one statement's match results through the tally.
func (a *Auditor) assemble(stmt model.Statement, results []MatchResult, tally *Tally) model.StatementResult {
	tally.Statement()
	out := model.StatementResult{Statement: stmt}
	for i, rule := range a.catalog.rules {
		if f, ok := tally.Admit(rule, results[i]); ok {
			out.Findings = append(out.Findings, f)
		}
	}
	return out
}

// AuditStatement checks a single statement, adding its findings to tally.
func (a *Auditor) AuditStatement(stmt model.Statement, tally *Tally) model.StatementResult {
	return a.assemble(stmt, a.evaluate(stmt), tally)
}

// Audit checks statements one at a time, in order.
func (a *Auditor) Audit(stmts []model.Statement) *model.Report {
	tally := NewTally(a.cfg)
	report := &model.Report{Results: make([]model.StatementResult, 0, len(stmts))}
	for _, stmt := range stmts {
		report.Results = append(report.Results, a.AuditStatement(stmt, tally))
	}
	report.Summary = tally.Summary()
	return report
}

// AuditParallel evaluates statements on up to workers goroutines.
// Each statement owns its result buffer; the buffers are merged in input
// order afterwards, so the report is identical to Audit's.
func (a *Auditor) AuditParallel(ctx context.Context, stmts []model.Statement, workers int) (*model.Report, error) {
	if workers <= 1 {
		return a.Audit(stmts), nil
	}

	buffers := make([][]MatchResult, len(stmts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range stmts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buffers[i] = a.evaluate(stmts[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "audit cancelled")
	}

	tally := NewTally(a.cfg)
	report := &model.Report{Results: make([]model.StatementResult, 0, len(stmts))}
	for i, stmt := range stmts {
		report.Results = append(report.Results, a.assemble(stmt, buffers[i], tally))
	}
	report.Summary = tally.Summary()
	return report, nil
}
