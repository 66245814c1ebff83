package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"sqlcheck/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T, files []string) string {
	t.Helper()
	rootDir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(rootDir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("select 1;"), 0o644))
	}
	return rootDir
}

func walkAll(t *testing.T, fw *FileWalker, roots ...string) ([]Target, []error) {
	t.Helper()
	targets, errs := fw.Walk(context.Background(), roots...)
	var got []Target
	for tg := range targets {
		got = append(got, tg)
	}
	var gotErrs []error
	for err := range errs {
		gotErrs = append(gotErrs, err)
	}
	return got, gotErrs
}

func relPaths(t *testing.T, root string, targets []Target) []string {
	t.Helper()
	var out []string
	for _, tg := range targets {
		rel, err := filepath.Rel(root, tg.Path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFileWalker_Walk(t *testing.T) {
	rootDir := makeTree(t, []string{
		"a.sql",
		"b.go",
		"notes.txt",
		"migrations/001_init.sql",
		"migrations/002_users.sql",
		"migrations/old/000_legacy.sql",
		"vendor/lib.sql",
		".git/hooks.sql",
	})

	tests := []struct {
		name     string
		exts     []string
		excludes []string
		want     []string
	}{
		{
			name:     "Find SQL files",
			exts:     []string{"sql"},
			excludes: []string{"vendor"},
			want:     []string{"a.sql", "migrations/001_init.sql", "migrations/002_users.sql", "migrations/old/000_legacy.sql"},
		},
		{
			name:     "Find SQL and Go files",
			exts:     []string{"sql", ".go"},
			excludes: []string{"vendor", "migrations/old/"},
			want:     []string{"a.sql", "b.go", "migrations/001_init.sql", "migrations/002_users.sql"},
		},
		{
			name:     "Glob exclude",
			exts:     []string{"sql"},
			excludes: []string{"vendor", "0*_*.sql"},
			want:     []string{"a.sql"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			walker := NewFileWalker(tt.exts, tt.excludes)
			got, errs := walkAll(t, walker, rootDir)
			assert.Empty(t, errs)
			assert.Equal(t, tt.want, relPaths(t, rootDir, got))

			for i, tg := range got {
				assert.Equal(t, i, tg.Seq)
			}
		})
	}
}

func TestFileWalker_FileRootsAndMissing(t *testing.T) {
	rootDir := makeTree(t, []string{"x.txt", "y.sql"})
	walker := NewFileWalker([]string{"sql"}, nil)

	got, errs := walkAll(t, walker,
		filepath.Join(rootDir, "x.txt"),
		filepath.Join(rootDir, "missing.sql"),
		filepath.Join(rootDir, "y.sql"),
	)

	// explicit files are taken regardless of extension
	assert.Equal(t, []string{"x.txt", "y.sql"}, relPaths(t, rootDir, got))
	assert.Len(t, errs, 1)
}

func TestWorkerPool_Start(t *testing.T) {
	mockProc := func(path string) ([]model.Statement, error) {
		if path == "bad" {
			return nil, fmt.Errorf("boom")
		}
		return []model.Statement{{SQL: "select " + path}, {SQL: "select 0"}}, nil
	}

	pool := NewWorkerPool(3, mockProc)
	targets := make(chan Target, 6)
	for i, p := range []string{"1", "2", "bad", "3", "4", "5"} {
		targets <- Target{Path: p, Seq: i}
	}
	close(targets)

	results := Collect(pool.Start(context.Background(), targets))
	require.Len(t, results, 6)
	for i, res := range results {
		assert.Equal(t, i, res.Seq)
	}
	assert.Error(t, results[2].Error)

	stmts := Statements(results)
	require.Len(t, stmts, 10)
	assert.Equal(t, "select 1", stmts[0].SQL)
	assert.Equal(t, "select 3", stmts[4].SQL)
	for i, s := range stmts {
		assert.Equal(t, i, s.Seq)
	}
}
