package classifier

import (
	"strings"
	"unicode/utf8"
)

const (
	createTableClause = "create table"
	alterTableClause  = "alter table"
)

// IsDDL reports whether the statement creates or alters a table.
// The clause may appear anywhere in the text.
func IsDDL(sql string) bool {
	return strings.Contains(sql, createTableClause) || strings.Contains(sql, alterTableClause)
}

// IsCreateStatement reports whether the statement contains a CREATE TABLE clause.
func IsCreateStatement(sql string) bool {
	return strings.Contains(sql, createTableClause)
}

// ExtractTableName returns the first space-delimited token after the first
// CREATE TABLE clause. It is a lexical heuristic: quoted, bracketed or
// schema-qualified names come back verbatim, and "if not exists" yields "if".
func ExtractTableName(sql string) (string, bool) {
	idx := strings.Index(sql, createTableClause)
	if idx < 0 {
		return "", false
	}

	rest := collapseSpaces(sql[idx+len(createTableClause):])
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// collapseSpaces trims leading and trailing spaces and squeezes runs of
// spaces to one. Only the space character is considered.
func collapseSpaces(s string) string {
	s = strings.Trim(s, " ")
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Facts are the statement-level properties shared by every rule.
// They are computed once per statement by Analyze.
type Facts struct {
	Text         string
	Length       int // in characters
	DDL          bool
	Create       bool
	TableName    string
	HasTableName bool
}

// Analyze computes the Facts of a normalized statement.
func Analyze(sql string) *Facts {
	name, ok := ExtractTableName(sql)
	return &Facts{
		Text:         sql,
		Length:       utf8.RuneCountInString(sql),
		DDL:          IsDDL(sql),
		Create:       IsCreateStatement(sql),
		TableName:    name,
		HasTableName: ok,
	}
}
