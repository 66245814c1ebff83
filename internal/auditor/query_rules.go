package auditor

import (
	"sqlcheck/internal/model"
)

// SpaghettiQueryLength is the statement length, in characters, at which a query is
// considered too large to reason about.
const SpaghettiQueryLength = 500

func queryRules() []Rule {
	return []Rule{
		selectStar,
		nullUsage,
		notNullUsage,
		stringConcatenation,
		groupByUsage,
		orderByRand,
		patternMatching,
		spaghettiQuery,
		joinCount,
		distinctCount,
		implicitColumns,
		havingUsage,
		nestedSubqueries,
		orUsage,
		unionUsage,
		distinctJoin,
	}
}

// selectStar flags SELECT *.
var selectStar = Rule{
	ID:       "select-star",
	Title:    "SELECT *",
	Category: model.CategoryQuery,
	Risk:     model.RiskError,
	Matcher:  Text(`(select\s+\*)`),
	Message: `● Inefficiency in moving data to the consumer:
When you SELECT *, you're often retrieving more columns from the database than
your application really needs to function. This causes more data to move from
the database server to the client, slowing access and increasing load on your
machines, as well as taking more time to travel across the network. This is
especially true when someone adds new columns to underlying tables that didn't
exist and weren't needed when the original consumers coded their data access.

● Indexing issues:
Consider a scenario where you want to tune a query to a high level of performance.
If you were to use *, and it returned more columns than you actually needed,
the server would often have to perform more expensive methods to retrieve your
data than it otherwise might. For example, you wouldn't be able to create an index
which simply covered the columns in your SELECT list, and even if you did
(including all columns [shudder]), the next guy who came around and added a column
to the underlying table would cause the optimizer to ignore your optimized covering
index, and you'd likely find that the performance of your query would drop
substantially for no readily apparent reason.

● Binding Problems:
When you SELECT *, it's possible to retrieve two columns of the same name from two
different tables. This can often crash your data consumer. Imagine a query that joins
two tables, both of which contain a column called "ID". How would a consumer know
which was which? SELECT * can also confuse views (at least in some versions SQL Server)
when underlying table structures change -- the view is not rebuilt, and the data which
comes back can be nonsense. And the worst part of it is that you can take care to name
your columns whatever you want, but the next guy who comes along might have no way of
knowing that he has to worry about adding a column which will collide with your
already-developed names.`,
}

// nullUsage flags any use of NULL.
var nullUsage = Rule{
	ID:       "null-usage",
	Title:    "NULL Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskInfo,
	Matcher:  Text(`(null)`),
	Message: `● Use NULL as a Unique Value:
NULL is not the same as zero. A number ten greater than an unknown is still an unknown.
NULL is not the same as a string of zero length.
Combining any string with NULL in standard SQL returns NULL.
NULL is not the same as false. Boolean expressions with AND, OR, and NOT also produce
results that some people find confusing.
When you declare a column as NOT NULL, it should be because it would make no sense
for the row to exist without a value in that column.
Use null to signify a missing value for any data type.`,
}

// notNullUsage flags NOT NULL columns in CREATE TABLE.
var notNullUsage = Rule{
	ID:       "not-null-usage",
	Title:    "NOT NULL Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskWarning,
	Guard:    createOnly,
	Matcher:  Text(`(not null)`),
	Message: `● Use NOT NULL only if the column cannot have a missing value:
When you declare a column as NOT NULL, it should be because it would make no sense
for the row to exist without a value in that column.
Use null to signify a missing value for any data type.`,
}

// stringConcatenation flags || concatenation, which yields NULL on a NULL operand.
var stringConcatenation = Rule{
	ID:       "string-concatenation",
	Title:    "String Concatenation",
	Category: model.CategoryQuery,
	Risk:     model.RiskInfo,
	Matcher:  Text(`\|\|`),
	Message: `● Use COALESCE for string concatenation of nullable columns:
You may need to force a column or expression to be non-null for the sake of
simplifying the query logic, but you don't want that value to be stored.
Use COALESCE function to construct the concatenated expression so that a
null-valued column doesn't make the whole expression become null.
EX: SELECT first_name || COALESCE(' ' || middle_initial || ' ', ' ') || last_name`,
}

// groupByUsage flags GROUP BY.
var groupByUsage = Rule{
	ID:       "group-by-usage",
	Title:    "GROUP BY Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskInfo,
	Matcher:  Text(`(group by)`),
	Message: `● Do not reference non-grouped columns:
Every column in the select-list of a query must have a single value row
per row group. This is called the Single-Value Rule.
Columns named in the GROUP BY clause are guaranteed to be exactly one value
per group, no matter how many rows the group matches.
Most DBMSs report an error if you try to run any query that tries to return
a column other than those columns named in the GROUP BY clause or as
arguments to aggregate functions.
Every expression in the select list must be contained in either an
aggregate function or the GROUP BY clause.
Follow the single-value rule to avoid ambiguous query results.`,
}

// orderByRand flags random ordering.
var orderByRand = Rule{
	ID:       "order-by-rand",
	Title:    "ORDER BY RAND Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskWarning,
	Matcher:  Text(`(order by rand\()`),
	Message: `● Sorting by a nondeterministic expression cannot use an index:
ORDER BY RAND() generates a value for every row and sorts the whole table
to return a few rows. Pick a random key in the application, or count the
rows and fetch by a random offset instead.`,
}

// patternMatching flags LIKE and REGEXP predicates.
var patternMatching = Rule{
	ID:       "pattern-matching",
	Title:    "Pattern Matching Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskInfo,
	Matcher:  Text(`(like)|(regexp)`),
	Message: `● Avoid pattern matching for full-text search:
LIKE with a leading wildcard and regular expressions cannot use ordinary
indexes and scan every row. Matching words is also hard to get right with
patterns. Use the database's full-text search facility, or an external
search engine, for keyword search.`,
}

// spaghettiQuery flags statements of SpaghettiQueryLength characters or more.
var spaghettiQuery = Rule{
	ID:       "spaghetti-query",
	Title:    "Spaghetti Query Alert",
	Category: model.CategoryQuery,
	Risk:     model.RiskInfo,
	Matcher:  &LengthThreshold{Min: SpaghettiQueryLength},
	Message: `● Split up a complex spaghetti query into several simpler queries:
One very long statement is hard to write, review and tune, and may
accidentally produce a Cartesian product. Several simpler queries are
easier to optimize and their results can be combined in the application.`,
}

// joinCount flags queries with five or more joins.
var joinCount = Rule{
	ID:             "join-count",
	Title:          "Reduce Number of JOINs",
	Category:       model.CategoryQuery,
	Risk:           model.RiskInfo,
	Matcher:        Text(`(join)`),
	MinOccurrences: 5,
	Message: `● Reduce the number of JOINs:
Each join multiplies the work the optimizer must do and the chance of a bad
plan. Check whether every joined table is needed, or whether the query can
be split.`,
}

// distinctCount flags queries using DISTINCT more than once.
var distinctCount = Rule{
	ID:             "distinct-count",
	Title:          "Eliminate Unnecessary DISTINCT Conditions",
	Category:       model.CategoryQuery,
	Risk:           model.RiskWarning,
	Matcher:        Text(`(distinct)`),
	MinOccurrences: 2,
	Message: `● Eliminate unnecessary DISTINCT conditions:
Several DISTINCT clauses in one statement usually mean duplicates are being
produced by a join and then thrown away again. Remove duplicates at the
source, for example with EXISTS, and keep DISTINCT where it is really
needed.`,
}

// implicitColumns flags INSERT without a column list.
var implicitColumns = Rule{
	ID:       "implicit-columns",
	Title:    "Implicit Column Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskWarning,
	Matcher:  Text(`(insert into \S+ values)`),
	Message: `● Explicitly name columns:
INSERT without a column list depends on the table's current column order.
Adding, dropping or reordering a column breaks the statement or, worse,
puts values in the wrong columns. Always list the target columns.`,
}

// havingUsage flags HAVING.
var havingUsage = Rule{
	ID:       "having-usage",
	Title:    "HAVING Clause Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskInfo,
	Matcher:  Text(`(having)`),
	Message: `● Consider rewriting HAVING clause into a WHERE clause:
HAVING filters after grouping, so every row is aggregated first. Conditions
that do not involve an aggregate belong in WHERE, where they can use
indexes and shrink the input to the GROUP BY.`,
}

// nestedSubqueries flags statements with more than one SELECT.
var nestedSubqueries = Rule{
	ID:             "nested-subqueries",
	Title:          "Nested sub queries",
	Category:       model.CategoryQuery,
	Risk:           model.RiskInfo,
	Matcher:        Text(`(select)`),
	MinOccurrences: 2,
	Message: `● Un-nest sub queries:
Nested sub queries are hard to read and, depending on the optimizer, may be
executed once per outer row. Rewriting them as joins often gives the
optimizer more room.`,
}

// orUsage flags OR conditions.
var orUsage = Rule{
	ID:       "or-usage",
	Title:    "OR Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskInfo,
	Matcher:  Text(`( or )`),
	Message: `● Consider using an IN predicate when querying an indexed column:
A chain of OR conditions on the same column is easier to read and often
better optimized as a single IN list.`,
}

// unionUsage flags UNION.
var unionUsage = Rule{
	ID:       "union-usage",
	Title:    "UNION Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskInfo,
	Matcher:  Text(`( union )`),
	Message: `● Consider using UNION ALL if you do not care about duplicates:
UNION removes duplicate rows, which requires sorting or hashing the whole
result. UNION ALL skips that step when duplicates are impossible or
acceptable.`,
}

// distinctJoin flags DISTINCT combined with a join.
var distinctJoin = Rule{
	ID:       "distinct-join",
	Title:    "DISTINCT & JOIN Usage",
	Category: model.CategoryQuery,
	Risk:     model.RiskInfo,
	Matcher:  Text(`(distinct.*join)`),
	Message: `● Consider using a sub query with EXISTS instead of DISTINCT:
A join followed by DISTINCT builds every matching combination and then
discards the duplicates. An EXISTS sub query stops at the first match and
never creates them.`,
}
