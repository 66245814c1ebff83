package auditor

import (
	"regexp"

	"sqlcheck/internal/classifier"
	"sqlcheck/internal/model"

	"github.com/pkg/errors"
)

// Guard decides whether a rule applies to a statement at all.
// It runs before the matcher and must only read the facts.
type Guard func(f *classifier.Facts) bool

// Rule is a single anti-pattern definition. Rules are values; once a
// Catalog is built from them they are never modified.
type Rule struct {
	ID             string
	Title          string
	Category       model.Category
	Risk           model.Risk
	Guard          Guard // optional
	Matcher        Matcher
	MinOccurrences int // zero means 1
	Message        string
}

func (r Rule) threshold() int {
	if r.MinOccurrences <= 0 {
		return 1
	}
	return r.MinOccurrences
}

// MatcherKind identifies the variant of a Matcher.
type MatcherKind int

const (
	KindTextPattern MatcherKind = iota + 1
	KindLengthThreshold
	KindTemplatePattern
)

func (k MatcherKind) String() string {
	switch k {
	case KindTextPattern:
		return "text"
	case KindLengthThreshold:
		return "length"
	case KindTemplatePattern:
		return "template"
	default:
		return "unknown"
	}
}

// Match is what a matcher found in one statement.
type Match struct {
	Count   int
	Matched string // first matching expression, if any
}

// Matcher is the closed set of ways a rule can test a statement:
// TextPattern, LengthThreshold and TemplatePattern.
type Matcher interface {
	Kind() MatcherKind
	// compile validates and prepares the matcher at catalog build time.
	compile() (Matcher, error)
	// match counts occurrences, stopping early once limit is reached.
	// A limit <= 0 means count everything.
	match(f *classifier.Facts, limit int) Match
}

// TextPattern matches a static regular expression against the statement text.
// With Absent set the rule fires when the expression does not occur at all.
type TextPattern struct {
	Expr   string
	Absent bool

	re *regexp.Regexp
}

// Text returns a TextPattern for expr.
func Text(expr string) *TextPattern {
	return &TextPattern{Expr: expr}
}

// Missing returns a TextPattern that fires when expr is absent.
func Missing(expr string) *TextPattern {
	return &TextPattern{Expr: expr, Absent: true}
}

func (p *TextPattern) Kind() MatcherKind { return KindTextPattern }

func (p *TextPattern) compile() (Matcher, error) {
	re, err := regexp.Compile(p.Expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %q", p.Expr)
	}
	return &TextPattern{Expr: p.Expr, Absent: p.Absent, re: re}, nil
}

func (p *TextPattern) match(f *classifier.Facts, limit int) Match {
	re := p.re
	if re == nil {
		// not built through a Catalog; a bad expression is a programming error
		re = regexp.MustCompile(p.Expr)
	}
	m := countMatches(re, f.Text, limit)
	if !p.Absent {
		return m
	}
	if m.Count > 0 {
		return Match{}
	}
	return Match{Count: 1}
}

// LengthThreshold fires when the statement is at least Min bytes long,
// regardless of its content.
type LengthThreshold struct {
	Min int
}

func (p *LengthThreshold) Kind() MatcherKind { return KindLengthThreshold }

func (p *LengthThreshold) compile() (Matcher, error) {
	if p.Min <= 0 {
		return nil, errors.Errorf("length threshold must be positive, got %d", p.Min)
	}
	return &LengthThreshold{Min: p.Min}, nil
}

func (p *LengthThreshold) match(f *classifier.Facts, _ int) Match {
	if f.Length >= p.Min {
		return Match{Count: 1}
	}
	return Match{}
}

// TemplatePattern builds its expression from the statement facts.
// Build returns false when the rule cannot apply, e.g. no table name.
type TemplatePattern struct {
	Build func(f *classifier.Facts) (string, bool)
}

func (p *TemplatePattern) Kind() MatcherKind { return KindTemplatePattern }

func (p *TemplatePattern) compile() (Matcher, error) {
	if p.Build == nil {
		return nil, errors.New("template pattern has no builder")
	}
	return p, nil
}

func (p *TemplatePattern) match(f *classifier.Facts, limit int) Match {
	expr, ok := p.Build(f)
	if !ok || expr == "" {
		return Match{}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Match{}
	}
	return countMatches(re, f.Text, limit)
}

// countMatches counts non-overlapping matches. A limit of 1 is a single search.
func countMatches(re *regexp.Regexp, text string, limit int) Match {
	if limit == 1 {
		loc := re.FindStringIndex(text)
		if loc == nil {
			return Match{}
		}
		return Match{Count: 1, Matched: text[loc[0]:loc[1]]}
	}

	n := -1
	if limit > 0 {
		n = limit
	}
	locs := re.FindAllStringIndex(text, n)
	if len(locs) == 0 {
		return Match{}
	}
	return Match{Count: len(locs), Matched: text[locs[0][0]:locs[0][1]]}
}
