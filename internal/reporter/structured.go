package reporter

import (
	"encoding/json"
	"io"

	"sqlcheck/internal/model"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errors.Errorf("unsupported output format: %s", s)
	}
}

// New returns the reporter for format writing to out.
func New(format Format, out io.Writer, cfg model.Config) (model.Reporter, error) {
	switch format {
	case FormatText:
		return NewConsoleReporter(out, cfg), nil
	case FormatJSON:
		return &JSONReporter{out: out, verbose: cfg.Verbose}, nil
	case FormatYAML:
		return &YAMLReporter{out: out, verbose: cfg.Verbose}, nil
	default:
		return nil, errors.Errorf("unsupported output format: %s", format)
	}
}

type findingDoc struct {
	Rule     string `json:"rule" yaml:"rule"`
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category" yaml:"category"`
	Risk     string `json:"risk" yaml:"risk"`
	Count    int    `json:"count" yaml:"count"`
	Matched  string `json:"matched,omitempty" yaml:"matched,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
}

type statementDoc struct {
	File     string       `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int          `json:"line" yaml:"line"`
	SQL      string       `json:"sql" yaml:"sql"`
	Findings []findingDoc `json:"findings" yaml:"findings"`
}

type summaryDoc struct {
	Statements int            `json:"statements" yaml:"statements"`
	Total      int            `json:"total" yaml:"total"`
	Suppressed int            `json:"suppressed" yaml:"suppressed"`
	ByRisk     map[string]int `json:"by_risk" yaml:"by_risk"`
	ByCategory map[string]int `json:"by_category" yaml:"by_category"`
}

type reportDoc struct {
	Statements []statementDoc `json:"statements" yaml:"statements"`
	Summary    summaryDoc     `json:"summary" yaml:"summary"`
}

// document flattens a report. Only statements with findings are listed.
func document(report *model.Report, verbose bool) reportDoc {
	doc := reportDoc{
		Statements: []statementDoc{},
		Summary: summaryDoc{
			Statements: report.Summary.Statements,
			Total:      report.Summary.Total,
			Suppressed: report.Summary.Suppressed,
			ByRisk:     make(map[string]int, len(model.Risks)),
			ByCategory: make(map[string]int, len(model.Categories)),
		},
	}
	for _, r := range model.Risks {
		doc.Summary.ByRisk[r.Key()] = report.Summary.ByRisk[r]
	}
	for _, c := range model.Categories {
		doc.Summary.ByCategory[c.Key()] = report.Summary.ByCategory[c]
	}

	for _, res := range report.Results {
		if !res.HasFindings() {
			continue
		}
		sd := statementDoc{
			File: res.Statement.Location.FilePath,
			Line: res.Statement.Location.Line,
			SQL:  res.Statement.SQL,
		}
		for _, f := range res.Findings {
			fd := findingDoc{
				Rule:     f.RuleID,
				Title:    f.Title,
				Category: f.Category.Key(),
				Risk:     f.Risk.Key(),
				Count:    f.Count,
				Matched:  f.Matched,
			}
			if verbose {
				fd.Message = f.Message
			}
			sd.Findings = append(sd.Findings, fd)
		}
		doc.Statements = append(doc.Statements, sd)
	}
	return doc
}

type JSONReporter struct {
	out     io.Writer
	verbose bool
}

func (r *JSONReporter) Report(report *model.Report) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document(report, r.verbose)); err != nil {
		return errors.Wrap(err, "encode json report")
	}
	return nil
}

type YAMLReporter struct {
	out     io.Writer
	verbose bool
}

func (r *YAMLReporter) Report(report *model.Report) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(document(report, r.verbose)); err != nil {
		return errors.Wrap(err, "encode yaml report")
	}
	return errors.Wrap(enc.Close(), "encode yaml report")
}
