package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestReviewCommand tests the review command structure.
func TestReviewCommand(t *testing.T) {
	cmd := NewReviewCommand(nil)

	if cmd == nil {
		t.Fatal("NewReviewCommand returned nil")
	}
	if !strings.HasPrefix(cmd.Use, "review") {
		t.Errorf("Use = %q, want prefix %q", cmd.Use, "review")
	}
	if cmd.Short == "" {
		t.Error("Short description is empty")
	}

	for _, flagName := range []string{"min-tier", "wins-cap", "person-cap", "wins-out", "person-out"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing flag --%s", flagName)
		}
	}

	minTier := cmd.Flags().Lookup("min-tier")
	if minTier != nil && minTier.DefValue != "Silver" {
		t.Errorf("--min-tier default = %q, want Silver", minTier.DefValue)
	}
}

// TestReviewRunBuildsQueues runs review and checks both queue outputs.
func TestReviewRunBuildsQueues(t *testing.T) {
	dir := t.TempDir()
	scored := writeScoredFixture(t, dir)
	winsOut := filepath.Join(dir, "wins.csv")
	personOut := filepath.Join(dir, "person.csv")

	cmd := NewReviewCommand(&ReviewCommandDeps{Config: testCLIConfig()})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{scored, "--wins-out", winsOut, "--person-out", personOut})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "wins (>= Silver): 2 rows") {
		t.Errorf("output should report 2 wins at Silver and above, got: %s", output)
	}
	if !strings.Contains(output, "person evidence: 1 rows") {
		t.Errorf("output should report 1 person-evidence row, got: %s", output)
	}

	wins, err := os.ReadFile(winsOut)
	if err != nil {
		t.Fatalf("read wins output: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(wins)), "\n"); len(lines) != 3 {
		t.Errorf("wins output should have header + 2 rows, got %d lines", len(lines))
	}

	person, err := os.ReadFile(personOut)
	if err != nil {
		t.Fatalf("read person output: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(person)), "\n"); len(lines) != 2 {
		t.Errorf("person output should have header + 1 row, got %d lines", len(lines))
	}
}

// TestReviewRunMinTierGold tightens the wins queue to Gold only.
func TestReviewRunMinTierGold(t *testing.T) {
	dir := t.TempDir()
	scored := writeScoredFixture(t, dir)

	cmd := NewReviewCommand(&ReviewCommandDeps{Config: testCLIConfig()})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{scored, "--min-tier", "Gold"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if !strings.Contains(buf.String(), "wins (>= Gold): 1 rows") {
		t.Errorf("output should report 1 Gold win, got: %s", buf.String())
	}
}

// TestReviewRunInvalidMinTier rejects tiers outside Gold/Silver/Bronze.
func TestReviewRunInvalidMinTier(t *testing.T) {
	dir := t.TempDir()
	scored := writeScoredFixture(t, dir)

	cmd := NewReviewCommand(&ReviewCommandDeps{Config: testCLIConfig()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{scored, "--min-tier", "Platinum"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("review with an invalid --min-tier should fail")
	}
	if !strings.Contains(err.Error(), "invalid --min-tier") {
		t.Errorf("unexpected error: %v", err)
	}
}
