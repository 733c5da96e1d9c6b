package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/transql/internal/cli/config"
	"github.com/leapstack-labs/transql/internal/cli/output"
	clitestutil "github.com/leapstack-labs/transql/internal/cli/testutil"
	"github.com/leapstack-labs/transql/internal/state"
	"github.com/leapstack-labs/transql/internal/testutil"
	"github.com/leapstack-labs/transql/internal/translate"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewTranslateCommand(), "translate <input> <output>", nil},
		{NewGraphCommand(), "graph <input>", nil},
		{NewBatchCommand(), "batch <dir>", []string{"out", "concurrency", "suffix"}},
		{NewWatchCommand(), "watch <input> <output>", nil},
		{NewREPLCommand(), "repl", nil},
		{NewHistoryCommand(), "history [id]", []string{"limit"}},
		{NewVersionCommand("1.0.0", "abc", "today"), "version", nil},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantOut []string
	}{
		{"default version", "0.1.0", []string{"transql v0.1.0", "commit abc123", "Databricks"}},
		{"dev version", "dev", []string{"transql vdev"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version, "abc123", "2025-01-01")
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(nil)

			require.NoError(t, cmd.Execute())
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestTranslateFile(t *testing.T) {
	tr := translate.New(translate.WithLogger(testutil.NewTestLogger(t)))
	dir := t.TempDir()

	t.Run("success", func(t *testing.T) {
		input := testutil.WriteFile(t, dir, "ok.sql", clitestutil.ReusedAlias)
		outPath := filepath.Join(dir, "out", "ok.sql")

		rec, err := translateFile(context.Background(), tr, input, outPath)
		require.NoError(t, err)

		assert.Equal(t, state.StatusSuccess, rec.Status)
		assert.Equal(t, 1, rec.Statements)
		assert.Equal(t, 1, rec.CTEs)
		assert.Equal(t, 1, rec.Hoisted)
		assert.Empty(t, rec.Error)

		got, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(got), "WITH\n  cte_alias_1 AS ("), "got %q", got)
	})

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"parse error", clitestutil.Broken, "error parsing SQL"},
		{"translation error", clitestutil.Cyclic, "error translating SQL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testutil.WriteFile(t, dir, tt.name+".sql", tt.content)
			outPath := filepath.Join(dir, tt.name+".out.sql")

			rec, err := translateFile(context.Background(), tr, input, outPath)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, state.StatusFailed, rec.Status)
			assert.Equal(t, err.Error(), rec.Error)
			assert.NoFileExists(t, outPath)
		})
	}

	t.Run("missing input", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.sql")
		_, err := translateFile(context.Background(), tr, missing, filepath.Join(dir, "x.sql"))
		require.Error(t, err)
		assert.Equal(t, "input file "+missing+" does not exist", err.Error())
	})
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.sql")

	require.NoError(t, writeFileAtomic(path, []byte("first\n")))
	require.NoError(t, writeFileAtomic(path, []byte("second\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files should be renamed away")
}

func TestBatchPaths(t *testing.T) {
	root := clitestutil.SetupTestProject(t)
	models := filepath.Join(root, "models")
	testutil.WriteFile(t, models, "done.databricks.sql", "SELECT 1")
	testutil.WriteFile(t, models, "notes.txt", "not sql")

	files, err := findSQLFiles(models, ".databricks.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(models, "alias.sql"),
		filepath.Join(models, "nested", "reverse_copy.sql"),
		filepath.Join(models, "reverse.sql"),
	}, files)

	tests := []struct {
		name     string
		outDir   string
		input    string
		expected string
	}{
		{"in place", "", filepath.Join(models, "alias.sql"), filepath.Join(models, "alias.dbx.sql")},
		{"out dir", "/tmp/out", filepath.Join(models, "nested", "reverse_copy.sql"), "/tmp/out/nested/reverse_copy.dbx.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := batchOutputPath(models, tt.outDir, tt.input, ".dbx.sql")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestREPLSession(t *testing.T) {
	tr := clitestutil.NewTestRenderer(output.ModeText, false)
	sess := &replSession{translator: translate.New(), renderer: tr.Renderer}

	assert.False(t, sess.handleLine("SELECT TOP 2"))
	assert.True(t, sess.pending())
	assert.Empty(t, tr.Output(), "nothing is translated before the semicolon")

	assert.False(t, sess.handleLine("  id FROM t;"))
	assert.False(t, sess.pending())
	assert.Equal(t, "SELECT\n  id\nFROM t\nLIMIT 2\n\n", tr.Output())

	assert.False(t, sess.handleLine("SELECT FROM;"))
	assert.Contains(t, tr.ErrorOutput(), "Error: ")

	assert.False(t, sess.handleLine(".nope"))
	assert.Contains(t, tr.ErrorOutput(), "Unknown command: .nope")

	tr.Out.Reset()
	assert.False(t, sess.handleLine(".help"))
	assert.Contains(t, tr.Output(), ".quit / .exit")

	assert.True(t, sess.handleLine(".quit"))
	clitestutil.AssertNoANSI(t, tr.Output()+tr.ErrorOutput())
}

func TestWatch(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "watched.sql", "SELECT 1 AS one")
	outPath := filepath.Join(dir, "watched.out.sql")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewWatchCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, cmd, input, outPath) }()

	readOutput := func() string {
		b, _ := os.ReadFile(outPath)
		return string(b)
	}
	require.Eventually(t, func() bool {
		return strings.Contains(readOutput(), "1 AS one")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(input, []byte("SELECT 2 AS two"), 0600))
	require.Eventually(t, func() bool {
		return strings.Contains(readOutput(), "2 AS two")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestDescribeGraphs_ColumnLists(t *testing.T) {
	res, err := translate.New().Translate("WITH x(a, b) AS (SELECT 1, 2), y AS (SELECT a FROM x) SELECT a FROM y")
	require.NoError(t, err)

	graphs := describeGraphs(res)
	require.Len(t, graphs, 1)
	assert.Equal(t, []string{"x", "y"}, graphs[0].Order)

	columns := map[string][]string{}
	for _, node := range graphs[0].Nodes {
		columns[node.Name] = node.Columns
	}
	assert.Equal(t, []string{"a", "b"}, columns["x"])
	assert.Nil(t, columns["y"])
}
