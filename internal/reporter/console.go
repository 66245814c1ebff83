package reporter

import (
	"fmt"
	"io"

	"sqlcheck/internal/model"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

const separator = "-------------------------------------------------"

type ConsoleReporter struct {
	out io.Writer
	cfg model.Config

	risk   map[model.Risk]*color.Color
	code   *color.Color
	header *color.Color
	ok     *color.Color
}

// NewConsoleReporter writes to out. Colour is on only when cfg.Color is set.
func NewConsoleReporter(out io.Writer, cfg model.Config) *ConsoleReporter {
	r := &ConsoleReporter{
		out: out,
		cfg: cfg,
		risk: map[model.Risk]*color.Color{
			model.RiskError:   color.New(color.FgRed, color.Bold),
			model.RiskWarning: color.New(color.FgYellow, color.Bold),
			model.RiskInfo:    color.New(color.FgBlue, color.Bold),
		},
		code:   color.New(color.FgCyan),
		header: color.New(color.Bold),
		ok:     color.New(color.FgGreen),
	}
	for _, c := range r.colors() {
		if cfg.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *ConsoleReporter) colors() []*color.Color {
	cs := []*color.Color{r.code, r.header, r.ok}
	for _, c := range r.risk {
		cs = append(cs, c)
	}
	return cs
}

func (r *ConsoleReporter) Report(report *model.Report) error {
	fmt.Fprintln(r.out, r.header.Sprint("==================== Results ==================="))

	for _, res := range report.Results {
		if !res.HasFindings() {
			continue
		}
		r.statement(res)
	}

	if report.Summary.Total == 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.ok.Sprint("✔ No SQL anti-patterns found! Great job."))
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.header.Sprint("==================== Summary ==================="))
	r.summary(report.Summary)
	return nil
}

func (r *ConsoleReporter) statement(res model.StatementResult) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, separator)
	loc := res.Statement.Location.String()
	if r.cfg.Verbose {
		fmt.Fprintf(r.out, "SQL Statement: %s\n", r.code.Sprint(res.Statement.SQL))
	}

	for _, f := range res.Findings {
		levelColor := r.risk[f.Risk]
		fmt.Fprintf(r.out, "[%s]: (%s) (%s) %s\n", loc, levelColor.Sprint(f.Risk), f.Category, f.Title)
		if f.Matched != "" {
			fmt.Fprintf(r.out, "[Matching Expression: %s]", r.code.Sprint(truncate(f.Matched, 80)))
			if f.Count > 1 {
				fmt.Fprintf(r.out, " (%d occurrences)", f.Count)
			}
			fmt.Fprintln(r.out)
		}
		if r.cfg.Verbose && f.Message != "" {
			fmt.Fprintln(r.out)
			fmt.Fprintln(r.out, f.Message)
		}
		fmt.Fprintln(r.out)
	}
}

func (r *ConsoleReporter) summary(s model.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Count"})

	t.AppendRow(table.Row{"All Anti-Patterns and Hints", s.Total})
	for i := len(model.Risks) - 1; i >= 0; i-- {
		risk := model.Risks[i]
		t.AppendRow(table.Row{"  " + risk.String(), s.ByRisk[risk]})
	}
	t.AppendSeparator()
	for _, c := range model.Categories {
		t.AppendRow(table.Row{"  " + c.String(), s.ByCategory[c]})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Statements checked", s.Statements})
	if s.Suppressed > 0 {
		t.AppendRow(table.Row{"Below risk level (hidden)", s.Suppressed})
	}
	t.Render()
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
