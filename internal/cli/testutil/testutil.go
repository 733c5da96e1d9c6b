// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/leapstack-labs/transql/internal/cli/output"
	sharedtestutil "github.com/leapstack-labs/transql/internal/testutil"
)

// Fixture SQL written by SetupTestProject.
const (
	// ReverseCTEs declares a CTE after the one reading from it.
	ReverseCTEs = `WITH second AS (SELECT id FROM first), first AS (SELECT 1 AS id)
SELECT id FROM second;`

	// ReusedAlias reuses a select alias in a later select item.
	ReusedAlias = `SELECT amount * 2 AS doubled, doubled + 1 AS plus_one FROM orders;`

	// Broken does not parse.
	Broken = `SELECT FROM WHERE;`

	// Cyclic has two CTEs reading from each other.
	Cyclic = `WITH a AS (SELECT * FROM b), b AS (SELECT * FROM a) SELECT * FROM a;`
)

// SetupTestProject creates a temporary directory with SQL files:
//
//	models/reverse.sql
//	models/alias.sql
//	models/nested/reverse_copy.sql
func SetupTestProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	sharedtestutil.WriteFile(t, dir, "models/reverse.sql", ReverseCTEs)
	sharedtestutil.WriteFile(t, dir, "models/alias.sql", ReusedAlias)
	sharedtestutil.WriteFile(t, dir, "models/nested/reverse_copy.sql", ReverseCTEs)
	return dir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
