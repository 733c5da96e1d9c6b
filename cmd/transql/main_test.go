// Package main provides tests for the transql CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/transql/internal/cli"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "input.sql")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	output, err := runCLI(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "transql v") {
		t.Errorf("version output should contain 'transql v', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"translate", "graph", "batch", "watch", "repl", "history", "version"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestTranslateFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	input := writeInput(t, dir, "SELECT TOP 3 name::text AS label FROM users")
	outPath := filepath.Join(dir, "out", "result.sql")

	output, err := runCLI(t, input, outPath)
	if err != nil {
		t.Fatalf("translate error = %v", err)
	}

	want := "Successfully translated SQL from " + input + " to " + outPath
	if !strings.Contains(output, want) {
		t.Errorf("output should contain %q, got: %s", want, output)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	expected := "SELECT\n  CAST(name AS STRING) AS label\nFROM users\nLIMIT 3\n"
	if string(got) != expected {
		t.Errorf("translated SQL = %q, want %q", got, expected)
	}
}

func TestTranslateFailures(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		args    func(input, out string) []string
		wantErr string
	}{
		{
			name:    "wrong argument count",
			input:   "SELECT 1",
			args:    func(input, _ string) []string { return []string{input} },
			wantErr: "accepts 2 arg(s)",
		},
		{
			name:    "missing input",
			args:    func(_, out string) []string { return []string{"does-not-exist.sql", out} },
			wantErr: "input file does-not-exist.sql does not exist",
		},
		{
			name:    "parse error",
			input:   "SELECT FROM WHERE",
			args:    func(input, out string) []string { return []string{input, out} },
			wantErr: "error parsing SQL",
		},
		{
			name:    "cycle",
			input:   "WITH a AS (SELECT * FROM b), b AS (SELECT * FROM a) SELECT * FROM a",
			args:    func(input, out string) []string { return []string{input, out} },
			wantErr: "error translating SQL: sort: cycle detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			input := filepath.Join(dir, "input.sql")
			if tt.input != "" {
				input = writeInput(t, dir, tt.input)
			}
			outPath := filepath.Join(dir, "output.sql")

			_, err := runCLI(t, tt.args(input, outPath)...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
			if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
				t.Errorf("output file should not exist after a failure")
			}

			entries, _ := os.ReadDir(dir)
			for _, e := range entries {
				if strings.Contains(e.Name(), ".tmp-") {
					t.Errorf("temporary file %s left behind", e.Name())
				}
			}
		})
	}
}

func TestTranslateKeepsExistingOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	input := writeInput(t, dir, "SELECT (")
	outPath := filepath.Join(dir, "output.sql")
	if err := os.WriteFile(outPath, []byte("previous"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, input, outPath); err == nil {
		t.Fatal("expected an error")
	}

	got, _ := os.ReadFile(outPath)
	if string(got) != "previous" {
		t.Errorf("existing output was modified: %q", got)
	}
}
