package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Location represents the physical location of a statement
type Location struct {
	FilePath string
	Line     int
}

func (l Location) String() string {
	if l.FilePath == "" {
		return fmt.Sprintf("<stdin>:%d", l.Line)
	}
	return fmt.Sprintf("%s:%d", l.FilePath, l.Line)
}

// Statement is one normalized SQL statement handed to the auditor.
// SQL is already lowercased, trimmed and whitespace-collapsed.
type Statement struct {
	SQL      string
	Location Location
	Seq      int // position in the input stream
}

// Risk is the severity of a rule. Values are ordered: Info < Warning < Error.
type Risk int

const (
	RiskInfo Risk = iota + 1
	RiskWarning
	RiskError
)

// Risks lists every risk from lowest to highest.
var Risks = []Risk{RiskInfo, RiskWarning, RiskError}

func (r Risk) Valid() bool {
	return r >= RiskInfo && r <= RiskError
}

func (r Risk) String() string {
	switch r {
	case RiskInfo:
		return "LOW RISK"
	case RiskWarning:
		return "MEDIUM RISK"
	case RiskError:
		return "HIGH RISK"
	default:
		return fmt.Sprintf("Risk(%d)", int(r))
	}
}

// Key is the short machine-readable name used in json/yaml output.
func (r Risk) Key() string {
	switch r {
	case RiskInfo:
		return "info"
	case RiskWarning:
		return "warning"
	case RiskError:
		return "error"
	default:
		return "unknown"
	}
}

// Category groups rules by the kind of anti-pattern they detect.
type Category int

const (
	CategoryLogicalDesign Category = iota + 1
	CategoryPhysicalDesign
	CategoryQuery
	CategoryApplication
)

// Categories lists every category in catalog order.
var Categories = []Category{
	CategoryLogicalDesign,
	CategoryPhysicalDesign,
	CategoryQuery,
	CategoryApplication,
}

func (c Category) Valid() bool {
	return c >= CategoryLogicalDesign && c <= CategoryApplication
}

func (c Category) String() string {
	switch c {
	case CategoryLogicalDesign:
		return "LOGICAL_DATABASE_DESIGN ANTI-PATTERN"
	case CategoryPhysicalDesign:
		return "PHYSICAL_DATABASE_DESIGN ANTI-PATTERN"
	case CategoryQuery:
		return "QUERY ANTI-PATTERN"
	case CategoryApplication:
		return "APPLICATION ANTI-PATTERN"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

func (c Category) Key() string {
	switch c {
	case CategoryLogicalDesign:
		return "logical-design"
	case CategoryPhysicalDesign:
		return "physical-design"
	case CategoryQuery:
		return "query"
	case CategoryApplication:
		return "application"
	default:
		return "unknown"
	}
}

// RiskTier is the user-selected strictness:
// 1 reports everything, 2 warnings and errors, 3 errors only.
type RiskTier int

const (
	TierAll          RiskTier = 1
	TierWarningError RiskTier = 2
	TierErrorOnly    RiskTier = 3
)

// ParseRiskTier validates a raw tier value. Out-of-range values are rejected, never clamped.
func ParseRiskTier(v int) (RiskTier, error) {
	t := RiskTier(v)
	if t < TierAll || t > TierErrorOnly {
		return 0, errors.Errorf("invalid risk level %d: must be 1 (all), 2 (medium and high) or 3 (high only)", v)
	}
	return t, nil
}

// Admits reports whether a rule of the given risk passes this tier.
func (t RiskTier) Admits(r Risk) bool {
	return int(r) >= int(t)
}

// Config holds the immutable run parameters.
type Config struct {
	MinRisk RiskTier
	Verbose bool
	Color   bool
}

// DefaultConfig reports everything, quietly, without colour.
func DefaultConfig() Config {
	return Config{MinRisk: TierAll}
}

// Validate checks the config once before any statement is processed.
func (c Config) Validate() error {
	if _, err := ParseRiskTier(int(c.MinRisk)); err != nil {
		return err
	}
	return nil
}

// Finding is one fired rule on one statement.
type Finding struct {
	RuleID   string
	Title    string
	Category Category
	Risk     Risk
	Count    int
	Matched  string // first matching expression
	Message  string
}

// StatementResult holds the findings of a single statement in catalog order.
type StatementResult struct {
	Statement Statement
	Findings  []Finding
}

// HasFindings tells the presentation layer whether to print a statement header.
func (r StatementResult) HasFindings() bool {
	return len(r.Findings) > 0
}

// Summary holds the run-wide totals of admitted findings.
type Summary struct {
	Statements int
	Total      int
	Suppressed int // fired but filtered out by the risk tier
	ByRisk     map[Risk]int
	ByCategory map[Category]int
}

// NewSummary returns a Summary with every risk and category present at zero.
func NewSummary() Summary {
	s := Summary{
		ByRisk:     make(map[Risk]int, len(Risks)),
		ByCategory: make(map[Category]int, len(Categories)),
	}
	for _, r := range Risks {
		s.ByRisk[r] = 0
	}
	for _, c := range Categories {
		s.ByCategory[c] = 0
	}
	return s
}

// Report is the result of one run.
type Report struct {
	Results []StatementResult
	Summary Summary
}
