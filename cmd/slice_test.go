package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestSliceCommand tests the slice command structure.
func TestSliceCommand(t *testing.T) {
	cmd := NewSliceCommand(nil)

	if cmd == nil {
		t.Fatal("NewSliceCommand returned nil")
	}
	if !strings.HasPrefix(cmd.Use, "slice") {
		t.Errorf("Use = %q, want prefix %q", cmd.Use, "slice")
	}
	if cmd.Short == "" {
		t.Error("Short description is empty")
	}

	for _, flagName := range []string{"terms", "out"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing flag --%s", flagName)
		}
	}
}

// TestSliceRunByTitleAndPerson slices by a title term and a person term.
func TestSliceRunByTitleAndPerson(t *testing.T) {
	dir := t.TempDir()
	scored := writeScoredFixture(t, dir)
	terms := writeTempFile(t, dir, "terms.csv",
		"term,kind\nCoração Valente,TITLE\nValesca,PERSON\n")
	out := filepath.Join(dir, "slice.csv")

	cmd := NewSliceCommand(&SliceCommandDeps{Config: testCLIConfig()})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{scored, "--terms", terms, "--out", out})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("slice failed: %v", err)
	}

	if !strings.Contains(buf.String(), "slice: 2 of 4 rows matched 2 terms") {
		t.Errorf("unexpected summary line: %s", buf.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read slice output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("slice output should have header + 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "matched_terms") {
		t.Errorf("slice header missing matched_terms: %s", lines[0])
	}
	// The artist row hit both the title term and the person term.
	if !strings.Contains(string(data), "Coração Valente;Valesca") {
		t.Errorf("slice output should join matched terms, got: %s", data)
	}
}

// TestSliceRunNoUsableTerms errors when the terms file is empty.
func TestSliceRunNoUsableTerms(t *testing.T) {
	dir := t.TempDir()
	scored := writeScoredFixture(t, dir)
	terms := writeTempFile(t, dir, "terms.csv", "term,kind\n")

	cmd := NewSliceCommand(&SliceCommandDeps{Config: testCLIConfig()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{scored, "--terms", terms})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("slice with no usable terms should fail")
	}
	if !strings.Contains(err.Error(), "no usable sure terms") {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestSliceRunRequiresTerms fails fast when --terms is not given.
func TestSliceRunRequiresTerms(t *testing.T) {
	dir := t.TempDir()
	scored := writeScoredFixture(t, dir)

	cmd := NewSliceCommand(&SliceCommandDeps{Config: testCLIConfig()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{scored})

	if err := cmd.Execute(); err == nil {
		t.Fatal("slice without --terms should fail")
	}
}
