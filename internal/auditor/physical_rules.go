package auditor

import (
	"sqlcheck/internal/model"
)

func physicalDesignRules() []Rule {
	return []Rule{
		impreciseDataType,
		valuesInDefinition,
		filesNotSQLDataTypes,
		tooManyIndexes,
		indexAttributeOrder,
	}
}

// impreciseDataType flags floating-point column types and literals.
var impreciseDataType = Rule{
	ID:       "imprecise-data-type",
	Title:    "Imprecise Data Type",
	Category: model.CategoryPhysicalDesign,
	Risk:     model.RiskError,
	Matcher:  Text(`(float)|(real)|(double precision)|(0\.000[0-9]*)`),
	Message: `● Use precise data types:
Virtually any use of FLOAT, REAL, or DOUBLE PRECISION data types is suspect.
Most applications that use floating-point numbers don't require the range of
values supported by IEEE 754 formats. The cumulative impact of inexact
floating-point numbers is severe when calculating aggregates.
Instead of FLOAT or its siblings, use the NUMERIC or DECIMAL SQL data types
for fixed-precision fractional numbers. These data types store numeric values
exactly, up to the precision you specify in the column definition.
Do not use FLOAT if you can avoid it.`,
}

// valuesInDefinition flags ENUM and IN lists in column definitions.
var valuesInDefinition = Rule{
	ID:       "values-in-definition",
	Title:    "Values In Definition",
	Category: model.CategoryPhysicalDesign,
	Risk:     model.RiskWarning,
	Guard:    ddlOnly,
	Matcher:  Text(`(enum)|(in \()`),
	Message: `● Don't specify values in column definition:
With enum, you declare the values as strings,
but internally the column is stored as the ordinal number of the string
in the enumerated list. The storage is therefore compact, but when you
sort a query by this column, the result is ordered by the ordinal value,
not alphabetically by the string value. You may not expect this behavior.`,
}

// filesNotSQLDataTypes flags file paths stored in place of file contents.
var filesNotSQLDataTypes = Rule{
	ID:       "files-not-sql-data-types",
	Title:    "Files Are Not SQL Data Types",
	Category: model.CategoryPhysicalDesign,
	Risk:     model.RiskWarning,
	Matcher:  Text(`(path varchar)|(unlink\s?\()`),
	Message: `● Resources outside the database are not managed by the database:
It's common for programmers to be unequivocal that we should always
store files external to the database.
Files don't obey DELETE, transaction isolation, rollback, or work well with
database backup tools. They do not obey SQL access privileges and are not SQL
data types.
Resources outside the database are not managed by the database.
You should consider storing blobs inside the database instead of in
external files. You can save the contents of a BLOB column to a file.`,
}

// tooManyIndexes flags CREATE TABLE statements declaring three or more indexes.
var tooManyIndexes = Rule{
	ID:             "too-many-indexes",
	Title:          "Too Many Indexes",
	Category:       model.CategoryPhysicalDesign,
	Risk:           model.RiskWarning,
	Guard:          createOnly,
	Matcher:        Text(`(index)`),
	MinOccurrences: 3,
	Message: `● Don't create too many indexes:
You benefit from an index only if you run queries that use that index.
There's no benefit to creating indexes that you don't use.
If you cover a database table with indexes, you incur a lot of overhead
with no assurance of payoff.
Consider dropping unnecessary indexes.
If an index provides all the columns we need, then we don't need to read
rows of data from the table at all. Consider using such covering indexes.
Know your data, know your queries, and maintain the right set of indexes.`,
}

// indexAttributeOrder flags CREATE INDEX, whose column order must match the queries.
var indexAttributeOrder = Rule{
	ID:       "index-attribute-order",
	Title:    "Index Attribute Order",
	Category: model.CategoryPhysicalDesign,
	Risk:     model.RiskInfo,
	Matcher:  Text(`(create index)`),
	Message: `● Don't create too many indexes:
If you create a compound index for the columns, make sure that the query
attributes are in the same order as the index attributes, so that the DBMS
can use the index while processing the query.
If the query and index attribute orders are not aligned, then the DBMS might
be unable to use the index during query processing.`,
}
