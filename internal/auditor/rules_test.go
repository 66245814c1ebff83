package auditor

import (
	"strings"
	"testing"

	"sqlcheck/internal/classifier"
	"sqlcheck/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalRule(t *testing.T, id, sql string) MatchResult {
	t.Helper()
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	rule, ok := cat.Lookup(id)
	require.True(t, ok, "rule %s not in catalog", id)
	return Evaluate(rule, classifier.Analyze(sql))
}

func joins(n int) string {
	var b strings.Builder
	b.WriteString("select a.x from a")
	for i := 0; i < n; i++ {
		b.WriteString(" join t on t.x = a.x")
	}
	return b.String()
}

func TestRules(t *testing.T) {
	tests := []struct {
		name      string
		rule      string
		sql       string
		wantFired bool
	}{
		{"multi-valued varchar", "multi-valued-attribute", "create table bugs (account_id varchar(100))", true},
		{"multi-valued int", "multi-valued-attribute", "create table bugs (account_id int)", false},

		{"recursive self reference", "recursive-dependency", "create table comments (comment_id int, parent_id int references comments(comment_id))", true},
		{"reference to other table", "recursive-dependency", "create table comments (bug_id int references bugs(bug_id))", false},
		{"no table name", "recursive-dependency", "select * from comments where x references comments", false},
		{"regex characters in table name", "recursive-dependency", "create table a.b (x int references axb)", false},

		{"primary key missing", "primary-key-does-not-exist", "create table t (a int)", true},
		{"primary key present", "primary-key-does-not-exist", "create table t (a int primary key)", false},
		{"primary key check needs create", "primary-key-does-not-exist", "alter table t add column b int", false},

		{"generic key in create", "generic-primary-key", "create table t (id serial, name varchar(50))", true},
		{"generic key in alter", "generic-primary-key", "alter table t add column id int", true},
		{"generic key needs ddl", "generic-primary-key", "select id from t", false},
		{"named key", "generic-primary-key", "create table t (t_id serial)", false},

		{"foreign key missing", "foreign-key-does-not-exist", "create table t (a int)", true},
		{"foreign key present", "foreign-key-does-not-exist", "create table t (a int, foreign key (a) references u(a))", false},

		{"eav table", "entity-attribute-value", "create table product_attribute (product_id int, attribute varchar(20))", true},
		{"attribute column only", "entity-attribute-value", "create table product (attribute varchar(20))", false},
		{"eav needs create", "entity-attribute-value", "select attribute from product_attribute", false},

		{"numbered columns", "metadata-tribbles", "create table t (tag1 int, tag2 int)", true},
		{"numbered columns outside ddl", "metadata-tribbles", "select tag1 , tag2 from t", false},

		{"float", "imprecise-data-type", "create table t (price float)", true},
		{"tiny literal", "imprecise-data-type", "select * from t where x < 0.0001", true},
		{"numeric", "imprecise-data-type", "create table t (price numeric(9,2))", false},

		{"enum", "values-in-definition", "create table t (status enum('open','closed'))", true},
		{"check in list", "values-in-definition", "alter table t add check (status in ('a','b'))", true},
		{"in list in query", "values-in-definition", "select * from t where status in ('a')", false},

		{"path column", "files-not-sql-data-types", "create table t (path varchar(200))", true},
		{"unlink", "files-not-sql-data-types", "select unlink ('x')", true},

		{"three indexes", "too-many-indexes", "create table t (a int, index ia (a), index ib (b), index ic (c))", true},
		{"two indexes", "too-many-indexes", "create table t (a int, index ia (a), index ib (b))", false},

		{"create index", "index-attribute-order", "create index ix on t (a, b)", true},

		{"select star", "select-star", "select * from t", true},
		{"select star newline collapsed", "select-star", "select\t* from t", true},
		{"count star", "select-star", "select count(*) from t", false},

		{"null", "null-usage", "select * from t where a is null", true},
		{"not null in create", "not-null-usage", "create table t (a int not null)", true},
		{"not null in query", "not-null-usage", "select * from t where a is not null", false},
		{"concatenation", "string-concatenation", "select a || b from t", true},
		{"group by", "group-by-usage", "select a, count(*) from t group by a", true},
		{"order by rand", "order-by-rand", "select * from t order by rand() limit 1", true},
		{"order by column", "order-by-rand", "select * from t order by random_col", false},
		{"like", "pattern-matching", "select * from t where a like '%x%'", true},

		{"four joins", "join-count", joins(4), false},
		{"five joins", "join-count", joins(5), true},

		{"one distinct", "distinct-count", "select distinct a from t", false},
		{"two distinct", "distinct-count", "select distinct a from (select distinct a from t) x", true},

		{"insert without columns", "implicit-columns", "insert into t values (1, 2)", true},
		{"insert with columns", "implicit-columns", "insert into t (a, b) values (1, 2)", false},

		{"having", "having-usage", "select a from t group by a having count(*) > 1", true},
		{"nested select", "nested-subqueries", "select * from t where a in (select a from u)", true},
		{"single select", "nested-subqueries", "select a from t", false},
		{"or", "or-usage", "select * from t where a = 1 or a = 2", true},
		{"order is not or", "or-usage", "select * from t order by a", false},
		{"union", "union-usage", "select a from t union select a from u", true},
		{"distinct join", "distinct-join", "select distinct a from t join u on t.x = u.x", true},
		{"join distinct", "distinct-join", "select a from t join u on t.x = u.x where a in (select distinct b from v)", false},

		{"password column", "readable-passwords", "create table users (password varchar(20))", true},
		{"password compare", "readable-passwords", "select * from users where password = 'secret'", true},
		{"password hash column", "readable-passwords", "create table users (password_hash bytea)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := evalRule(t, tt.rule, tt.sql)
			assert.Equal(t, tt.wantFired, res.Fired)
		})
	}
}

func TestJoinCountThreshold(t *testing.T) {
	res := evalRule(t, "join-count", joins(4))
	assert.False(t, res.Fired)
	assert.Equal(t, 4, res.Count)

	res = evalRule(t, "join-count", joins(5))
	assert.True(t, res.Fired)
	assert.Equal(t, 5, res.Count)

	res = evalRule(t, "join-count", joins(7))
	assert.True(t, res.Fired)
	assert.Equal(t, 7, res.Count, "thresholds above one count every match")
}

func TestSpaghettiQuery(t *testing.T) {
	short := strings.Repeat("a", SpaghettiQueryLength-1)
	long := strings.Repeat("a", SpaghettiQueryLength)

	assert.False(t, evalRule(t, "spaghetti-query", short).Fired)
	assert.True(t, evalRule(t, "spaghetti-query", long).Fired)

	q := "select a from t where " + strings.Repeat("b", SpaghettiQueryLength)
	assert.True(t, evalRule(t, "spaghetti-query", q).Fired)

	// length is counted in characters, not bytes
	prefix := "select '"
	quoted := func(n int) string {
		return prefix + strings.Repeat("é", n-len(prefix)-1) + "'"
	}
	assert.False(t, evalRule(t, "spaghetti-query", quoted(SpaghettiQueryLength-1)).Fired)
	assert.True(t, evalRule(t, "spaghetti-query", quoted(SpaghettiQueryLength)).Fired)
}

func TestEvaluate_SingleSearch(t *testing.T) {
	res := evalRule(t, "null-usage", "select null, null, null")
	assert.True(t, res.Fired)
	assert.Equal(t, 1, res.Count, "single-occurrence rules stop at the first match")
	assert.Equal(t, "null", res.Matched)
}

func TestEvaluate_GuardShortCircuits(t *testing.T) {
	called := false
	cat, err := NewCatalog(Rule{
		ID:       "guarded",
		Title:    "Guarded",
		Category: selectStar.Category,
		Risk:     selectStar.Risk,
		Guard:    func(*classifier.Facts) bool { return false },
		Matcher: &TemplatePattern{Build: func(*classifier.Facts) (string, bool) {
			called = true
			return "x", true
		}},
	})
	require.NoError(t, err)

	rule, _ := cat.Lookup("guarded")
	res := Evaluate(rule, classifier.Analyze("x x x"))
	assert.False(t, res.Fired)
	assert.False(t, called)
}

func TestEvaluate_UncompiledRule(t *testing.T) {
	rule := Rule{
		ID:       "adhoc",
		Category: model.CategoryQuery,
		Risk:     model.RiskInfo,
		Matcher:  Text(`(truncate)`),
	}
	assert.True(t, Evaluate(rule, classifier.Analyze("truncate accounts")).Fired)

	rule.Matcher = Text(`(unclosed`)
	assert.Panics(t, func() {
		Evaluate(rule, classifier.Analyze("select 1"))
	})
}

func TestRuleMessages(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	star, ok := cat.Lookup("select-star")
	require.True(t, ok)
	assert.Contains(t, star.Message, "● Inefficiency in moving data to the consumer:")
	assert.Contains(t, star.Message, "● Indexing issues:")
	assert.Contains(t, star.Message, "● Binding Problems:")

	tribbles, ok := cat.Lookup("metadata-tribbles")
	require.True(t, ok)
	assert.Contains(t, tribbles.Message, "Don't let data spawn metadata.")

	for _, r := range cat.Rules() {
		assert.False(t, strings.HasSuffix(r.Message, "\n"), r.ID)
	}
}
