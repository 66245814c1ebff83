package auditor

import (
	"regexp"

	"sqlcheck/internal/classifier"
	"sqlcheck/internal/model"
)

func logicalDesignRules() []Rule {
	return []Rule{
		multiValuedAttribute,
		recursiveDependency,
		primaryKeyDoesNotExist,
		genericPrimaryKey,
		foreignKeyDoesNotExist,
		entityAttributeValue,
		metadataTribbles,
	}
}

// multiValuedAttribute flags id lists stored in a string column.
var multiValuedAttribute = Rule{
	ID:       "multi-valued-attribute",
	Title:    "Multi-Valued Attribute",
	Category: model.CategoryLogicalDesign,
	Risk:     model.RiskError,
	Matcher:  Text(`(id\s+varchar)|(id\s+text)|(id\s+regexp)`),
	Message: `● Store each value in its own column and row:
Storing a list of IDs as a VARCHAR/TEXT column can cause performance and data integrity
problems. Querying against such a column would require using pattern-matching
expressions. It is awkward and costly to join a comma-separated list to matching rows.
This will make it harder to validate IDs. Think about what is the greatest number of
entries this list must support? Instead of using a multi-valued attribute,
consider storing it in a separate table, so that each individual value of that attribute
occupies a separate row. Such an intersection table implements a many-to-many relationship
between the two referenced tables. This will greatly simplify querying and validating
the IDs.`,
}

// recursiveDependency flags a table whose foreign key references itself.
var recursiveDependency = Rule{
	ID:       "recursive-dependency",
	Title:    "Recursive Dependency",
	Category: model.CategoryLogicalDesign,
	Risk:     model.RiskError,
	Matcher: &TemplatePattern{Build: func(f *classifier.Facts) (string, bool) {
		if !f.HasTableName {
			return "", false
		}
		return `(references\s+` + regexp.QuoteMeta(f.TableName) + `)`, true
	}},
	Message: `● Avoid recursive relationships:
It’s common for data to have recursive relationships. Data may be organized in a
treelike or hierarchical way. However, creating a foreign key constraint to enforce
the relationship between two columns in the same table lends to awkward querying.
Each level of the tree corresponds to another join. You will need to issue recursive
queries to get all descendants or all ancestors of a node.
A solution is to construct an additional closure table. It involves storing all paths
through the tree, not just those with a direct parent-child relationship.
You might want to compare different hierarchical data designs -- closure table,
path enumeration, nested sets -- and pick one based on your application's needs.`,
}

// primaryKeyDoesNotExist flags CREATE TABLE statements without a primary key.
var primaryKeyDoesNotExist = Rule{
	ID:       "primary-key-does-not-exist",
	Title:    "Primary Key Does Not Exist",
	Category: model.CategoryLogicalDesign,
	Risk:     model.RiskWarning,
	Guard:    createOnly,
	Matcher:  Missing(`(primary key)`),
	Message: `● Consider adding a primary key:
A primary key constraint is important when you need to do the following:
prevent a table from containing duplicate rows,
reference individual rows in queries, and
support foreign key references
If you don’t use primary key constraints, you create a chore for yourself:
checking for duplicate rows. More often than not, you will need to define
a primary key for every table. Use compound keys when they are appropriate.`,
}

// genericPrimaryKey flags a column simply named "id".
var genericPrimaryKey = Rule{
	ID:       "generic-primary-key",
	Title:    "Generic Primary Key",
	Category: model.CategoryLogicalDesign,
	Risk:     model.RiskError,
	Guard:    ddlOnly,
	Matcher:  Text(`(\s+[\(]?id\s+)|(,id\s+)|(\s+id\s+serial)`),
	Message: `● Skip using a generic primary key (id):
Adding an id column to every table causes several effects that make its
use seem arbitrary. You might end up creating a redundant key or allow
duplicate rows if you add this column in a compound key.
The name id is so generic that it holds no meaning. This is especially
important when you join two tables and they have the same primary
key column name.`,
}

// foreignKeyDoesNotExist flags CREATE TABLE statements without a foreign key.
var foreignKeyDoesNotExist = Rule{
	ID:       "foreign-key-does-not-exist",
	Title:    "Foreign Key Does Not Exist",
	Category: model.CategoryLogicalDesign,
	Risk:     model.RiskWarning,
	Guard:    createOnly,
	Matcher:  Missing(`(foreign key)`),
	Message: `● Consider adding a foreign key:
Are you leaving out the application constraints? Even though it seems at
first that skipping foreign key constraints makes your database design
simpler, more flexible, or speedier, you pay for this in other ways.
It becomes your responsibility to write code to ensure referential integrity
manually. Use foreign key constraints to enforce referential integrity.
Foreign keys have another feature you can’t mimic using application code:
cascading updates to multiple tables. This feature allows you to
update or delete the parent row and lets the database takes care of any child
rows that reference it. The way you declare the ON UPDATE or ON DELETE clauses
in the foreign key constraint allow you to control the result of a cascading
operation. Make your database mistake-proof with constraints.`,
}

// entityAttributeValue flags generic attribute tables.
var entityAttributeValue = Rule{
	ID:       "entity-attribute-value",
	Title:    "Entity-Attribute-Value Pattern",
	Category: model.CategoryLogicalDesign,
	Risk:     model.RiskWarning,
	Guard:    tableNameContains("attribute"),
	Matcher:  Text(`(attribute)`),
	Message: `● Dynamic schema with variable attributes:
Are you trying to create a schema where you can define new attributes
at runtime.? This involves storing attributes as rows in an attribute table.
This is referred to as the Entity-Attribute-Value or schemaless pattern.
When you use this pattern,  you sacrifice many advantages that a conventional
database design would have given you. You can't make mandatory attributes.
You can't enforce referential integrity. You might find that attributes are
not being named consistently. A solution is to store all related types in one table,
with distinct columns for every attribute that exists in any type
(Single Table Inheritance). Use one attribute to define the subtype of a given row.
Many attributes are subtype-specific, and these columns must
be given a null value on any row storing an object for which the attribute`,
}

// metadataTribbles flags numbered column or table names.
var metadataTribbles = Rule{
	ID:       "metadata-tribbles",
	Title:    "Metadata Tribbles",
	Category: model.CategoryLogicalDesign,
	Risk:     model.RiskError,
	Guard:    ddlOnly,
	Matcher:  Text(`[A-za-z\-_@]+[0-9]+ `),
	Message: `● Store each value with the same meaning in a single column:
Creating multiple columns in a table indicates that you are trying to store
a multivalued attribute. This design makes it hard to add or remove values,
to ensure the uniqueness of values, and handling growing sets of values.
The best solution is to create a dependent table with one column for the
multivalue attribute. Store the multiple values in multiple rows instead of
multiple columns. Also, define a foreign key in the dependent table to associate
the values to its parent row.

● Breaking down a table or column by year:
You might be trying to split a single column into multiple columns,
using column names based on distinct values in another attribute.
Each year, you will need to add one more column or table.
You are mixing metadata with data. You will now need to make sure that
the primary key values are unique across all the split columns or tables.
The solution is to use a feature called sharding or horizontal partitioning.
(PARTITION BY HASH ( YEAR(...) ). With this feature, you can gain the
benefits of splitting a large table without the drawbacks.
Partitioning is not defined in the SQL standard, so each brand of database
implements it in their own nonstandard way.
Another remedy for metadata tribbles is to create a dependent table.
Instead of one row per entity with multiple columns for each year,
use multiple rows. Don't let data spawn metadata.`,
}
