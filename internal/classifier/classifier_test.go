package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDDL(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		{"create table", "create table accounts (id int)", true},
		{"alter table", "alter table accounts add column x int", true},
		{"clause not at start", "/* x */ create table t (a int)", true},
		{"select", "select id from t", false},
		{"create index", "create index idx on t (a)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDDL(tt.sql))
		})
	}
}

func TestIsCreateStatement(t *testing.T) {
	assert.True(t, IsCreateStatement("create table t (a int)"))
	assert.False(t, IsCreateStatement("alter table t add column b int"))
	assert.False(t, IsCreateStatement("select * from t"))
}

func TestExtractTableName(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		want   string
		wantOK bool
	}{
		{"simple", "create table accounts (id int)", "accounts", true},
		{"extra spaces", "create table    accounts    (id int)", "accounts", true},
		{"no space before paren", "create table accounts(id int)", "accounts(id", true},
		{"schema qualified", "create table public.accounts (id int)", "public.accounts", true},
		{"if not exists is not understood", "create table if not exists accounts (id int)", "if", true},
		{"nothing after clause", "create table", "", false},
		{"trailing spaces only", "create table   ", "", false},
		{"select", "select * from accounts", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractTableName(tt.sql)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyze(t *testing.T) {
	f := Analyze("create table user_attribute (id int)")
	assert.True(t, f.DDL)
	assert.True(t, f.Create)
	assert.True(t, f.HasTableName)
	assert.Equal(t, "user_attribute", f.TableName)
	assert.Equal(t, len("create table user_attribute (id int)"), f.Length)

	f = Analyze("select 1")
	assert.False(t, f.DDL)
	assert.False(t, f.Create)
	assert.False(t, f.HasTableName)
	assert.Empty(t, f.TableName)

	f = Analyze("select 'été'")
	assert.Equal(t, 12, f.Length)
}
