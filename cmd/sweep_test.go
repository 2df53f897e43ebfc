package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/igorlobovc/claimsift/pkg/scoring"
	"github.com/igorlobovc/claimsift/pkg/usage"
)

// writeScoredFixture writes a small scored CSV covering every tier and
// returns its path.
func writeScoredFixture(t *testing.T, dir string) string {
	t.Helper()
	rows := []*scoring.ScoredRow{
		{
			Row: usage.Row{SourceFile: "a.csv", RowID: "a.csv:2", Title: "Coração Valente", Author: "Dudu Falcão"},
			Result: scoring.Result{
				Tier: scoring.TierGold, Matched: true, RefMatchCount: 1,
				EvidenceFlags: []string{scoring.FlagISRCMatch},
				RefTitleNorm:  "coracao valente", RefISRC: "brtvw1300013",
			},
		},
		{
			Row: usage.Row{SourceFile: "a.csv", RowID: "a.csv:3", Title: "Coração Valente", Artist: "Valesca"},
			Result: scoring.Result{
				Tier: scoring.TierSilver, Matched: true, RefMatchCount: 1,
				EvidenceFlags: []string{scoring.FlagTitleExact, scoring.FlagArtistTokenOverlap},
				RefTitleNorm:  "coracao valente",
			},
		},
		{
			Row: usage.Row{SourceFile: "b.csv", RowID: "b.csv:2", Title: "Beijinho no Ombro"},
			Result: scoring.Result{
				Tier: scoring.TierBronze, Matched: true, RefMatchCount: 1,
				EvidenceFlags: []string{scoring.FlagTitleExact},
				RefTitleNorm:  "beijinho no ombro",
			},
		},
		{
			Row:    usage.Row{SourceFile: "b.csv", RowID: "b.csv:3", Title: "Obra Desconhecida"},
			Result: scoring.Result{Tier: scoring.TierNoMatch},
		},
	}

	path := filepath.Join(dir, "scored.csv")
	if err := scoring.WriteScoredCSV(path, rows); err != nil {
		t.Fatalf("write scored fixture: %v", err)
	}
	return path
}

// TestSweepCommand tests the sweep command structure.
func TestSweepCommand(t *testing.T) {
	cmd := NewSweepCommand(nil)

	if cmd == nil {
		t.Fatal("NewSweepCommand returned nil")
	}
	if !strings.HasPrefix(cmd.Use, "sweep") {
		t.Errorf("Use = %q, want prefix %q", cmd.Use, "sweep")
	}
	if cmd.Short == "" {
		t.Error("Short description is empty")
	}

	for _, flagName := range []string{"top", "out", "output"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing flag --%s", flagName)
		}
	}
}

// TestSweepRunTextSummary runs a sweep and checks the text report.
func TestSweepRunTextSummary(t *testing.T) {
	dir := t.TempDir()
	scored := writeScoredFixture(t, dir)
	out := filepath.Join(dir, "sweep.csv")

	cmd := NewSweepCommand(&SweepCommandDeps{Config: testCLIConfig()})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{scored, "--top", "2", "--out", out})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "rows: 4, selected: 2") {
		t.Errorf("output should report rows and selection, got: %s", output)
	}
	if !strings.Contains(output, "Gold: 1") || !strings.Contains(output, "NoMatch: 1") {
		t.Errorf("output should report tier counts, got: %s", output)
	}
	if !strings.Contains(output, "coracao valente") {
		t.Errorf("output should list top reference titles, got: %s", output)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read sweep output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("sweep output should have header + 2 rows, got %d lines", len(lines))
	}
	// Best-first: the Gold row with a reference-backed ISRC leads.
	if !strings.Contains(lines[1], "Gold") {
		t.Errorf("first selected row should be Gold, got: %s", lines[1])
	}
}

// TestSweepRunJSONSummary runs a sweep with --output json and parses it.
func TestSweepRunJSONSummary(t *testing.T) {
	dir := t.TempDir()
	scored := writeScoredFixture(t, dir)

	cmd := NewSweepCommand(&SweepCommandDeps{Config: testCLIConfig()})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{scored, "--output", "json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output should be valid JSON: %v", err)
	}
	if total, ok := result["total_rows"].(float64); !ok || int(total) != 4 {
		t.Errorf("total_rows should be 4, got: %v", result["total_rows"])
	}
	if sel, ok := result["selected"].(float64); !ok || int(sel) != 4 {
		t.Errorf("selected should be 4 when --top is unset, got: %v", result["selected"])
	}
	counts, ok := result["tier_counts"].(map[string]interface{})
	if !ok {
		t.Fatalf("tier_counts missing: %v", result)
	}
	if gold, ok := counts["Gold"].(float64); !ok || int(gold) != 1 {
		t.Errorf("tier_counts.Gold should be 1, got: %v", counts["Gold"])
	}
}

// TestSweepRunMissingInput errors on a nonexistent scored CSV.
func TestSweepRunMissingInput(t *testing.T) {
	cmd := NewSweepCommand(&SweepCommandDeps{Config: testCLIConfig()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.csv")})

	if err := cmd.Execute(); err == nil {
		t.Fatal("sweep on a missing file should fail")
	}
}
