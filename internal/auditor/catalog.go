package auditor

import (
	"sync"

	"sqlcheck/internal/model"

	"github.com/pkg/errors"
)

// Catalog is an ordered, validated and immutable set of rules.
// It is safe to share between goroutines.
type Catalog struct {
	rules []Rule
	index map[string]int
}

// NewCatalog validates and compiles rules in the given order.
// Any malformed rule fails the whole build.
func NewCatalog(rules ...Rule) (*Catalog, error) {
	c := &Catalog{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}

	for i, r := range rules {
		if r.ID == "" {
			return nil, errors.Errorf("rule #%d has no id", i)
		}
		if _, dup := c.index[r.ID]; dup {
			return nil, errors.Errorf("duplicate rule id %q", r.ID)
		}
		if !r.Category.Valid() {
			return nil, errors.Errorf("rule %q: invalid category %d", r.ID, int(r.Category))
		}
		if !r.Risk.Valid() {
			return nil, errors.Errorf("rule %q: invalid risk %d", r.ID, int(r.Risk))
		}
		if r.MinOccurrences < 0 {
			return nil, errors.Errorf("rule %q: negative minimum occurrences %d", r.ID, r.MinOccurrences)
		}
		if r.Matcher == nil {
			return nil, errors.Errorf("rule %q: no matcher", r.ID)
		}

		m, err := r.Matcher.compile()
		if err != nil {
			return nil, errors.Wrapf(err, "rule %q", r.ID)
		}
		r.Matcher = m
		r.MinOccurrences = r.threshold()

		c.index[r.ID] = len(c.rules)
		c.rules = append(c.rules, r)
	}

	return c, nil
}

// Rules returns a copy of the rules in evaluation order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Lookup returns a rule by id.
func (c *Catalog) Lookup(id string) (Rule, bool) {
	i, ok := c.index[id]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// Without returns a catalog with the given rule ids removed, keeping order.
// Unknown ids are an error.
func (c *Catalog) Without(ids ...string) (*Catalog, error) {
	if len(ids) == 0 {
		return c, nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := c.index[id]; !ok {
			return nil, errors.Errorf("unknown rule %q", id)
		}
		drop[id] = struct{}{}
	}

	out := &Catalog{index: make(map[string]int, len(c.rules))}
	for _, r := range c.rules {
		if _, skip := drop[r.ID]; skip {
			continue
		}
		out.index[r.ID] = len(out.rules)
		out.rules = append(out.rules, r)
	}
	return out, nil
}

// CountByCategory returns the number of rules per category.
func (c *Catalog) CountByCategory() map[model.Category]int {
	counts := make(map[model.Category]int, len(model.Categories))
	for _, r := range c.rules {
		counts[r.Category]++
	}
	return counts
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	var rules []Rule
	rules = append(rules, logicalDesignRules()...)
	rules = append(rules, physicalDesignRules()...)
	rules = append(rules, queryRules()...)
	rules = append(rules, applicationRules()...)
	return rules
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return NewCatalog(DefaultRules()...)
})

// DefaultCatalog returns the built-in catalog. It is built once per process.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}
