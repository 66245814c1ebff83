package auditor

import (
	"strings"

	"sqlcheck/internal/classifier"
)

func ddlOnly(f *classifier.Facts) bool { return f.DDL }

func createOnly(f *classifier.Facts) bool { return f.Create }

// tableNameContains applies a rule only when the CREATE TABLE name contains sub.
func tableNameContains(sub string) Guard {
	return func(f *classifier.Facts) bool {
		return f.HasTableName && strings.Contains(f.TableName, sub)
	}
}
