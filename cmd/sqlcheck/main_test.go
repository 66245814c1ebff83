package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sqlcheck/internal/config"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd, err := newRootCmd(config.New())
	require.NoError(t, err)
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), err
}

func TestRun_Stdin(t *testing.T) {
	out, err := run(t, "select * from accounts;\nselect id from accounts;\n", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "[<stdin>:1]: (HIGH RISK) (QUERY ANTI-PATTERN)")
	assert.NotContains(t, out, "<stdin>:2")
	assert.NotContains(t, out, "\x1b[")
}

func TestRun_JSONFromFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sql"), []byte("select * from t;\n\nselect a from t where b is null;\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "b.sql"), []byte("select * from v;"), 0o644))

	out, err := run(t, "", "-o", "json", "-r", "3", dir)
	require.NoError(t, err)

	var doc struct {
		Statements []struct {
			File     string `json:"file"`
			Line     int    `json:"line"`
			Findings []struct {
				Rule string `json:"rule"`
			} `json:"findings"`
		} `json:"statements"`
		Summary struct {
			Statements int `json:"statements"`
			Total      int `json:"total"`
			Suppressed int `json:"suppressed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Statements, 1)
	assert.Equal(t, filepath.Join(dir, "a.sql"), doc.Statements[0].File)
	assert.Equal(t, 1, doc.Statements[0].Line)
	assert.Equal(t, "select-star", doc.Statements[0].Findings[0].Rule)
	assert.Equal(t, 2, doc.Summary.Statements)
	assert.Equal(t, 1, doc.Summary.Total)
	assert.Equal(t, 1, doc.Summary.Suppressed)
}

func TestRun_FailOnError(t *testing.T) {
	_, err := run(t, "select * from t;", "--fail-on-error", "--no-color")
	assert.ErrorIs(t, err, errFindings)

	_, err = run(t, "select a from t;", "--fail-on-error", "--no-color")
	assert.NoError(t, err)
}

func TestRun_Disable(t *testing.T) {
	_, err := run(t, "select * from t;", "--fail-on-error", "--disable", "select-star")
	assert.NoError(t, err)

	_, err = run(t, "select 1;", "--disable", "bogus")
	assert.Error(t, err)
}

func TestRun_InvalidRiskLevel(t *testing.T) {
	_, err := run(t, "select 1;", "-r", "5")
	assert.Error(t, err)
}

func TestRun_MissingPath(t *testing.T) {
	_, err := run(t, "", filepath.Join(t.TempDir(), "nope.sql"))
	assert.Error(t, err)
}

func TestRulesCmd(t *testing.T) {
	out, err := run(t, "", "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "select-star")
	assert.Contains(t, out, "spaghetti-query")

	out, err = run(t, "", "rules", "-r", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "select-star")
	assert.NotContains(t, out, "or-usage")
}

func TestBindFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int(config.KeyJobs, 2, "")

	v := config.New()
	require.NoError(t, bindFlags(v, fs, config.KeyJobs))
	assert.Equal(t, 2, v.GetInt(config.KeyJobs))

	assert.Error(t, bindFlags(v, fs, config.KeyJobs, "no-such-flag"))
}
