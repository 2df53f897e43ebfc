package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// TestFieldsCommand tests the fields command structure.
func TestFieldsCommand(t *testing.T) {
	cmd := NewFieldsCommand(nil)

	if cmd == nil {
		t.Fatal("NewFieldsCommand returned nil")
	}
	if cmd.Use != "fields" {
		t.Errorf("Use = %q, want %q", cmd.Use, "fields")
	}
	if cmd.Short == "" {
		t.Error("Short description is empty")
	}

	for _, flagName := range []string{"headers", "sample", "synonyms", "output"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing flag --%s", flagName)
		}
	}
}

// TestFieldsRunHeaderList resolves an explicit header list.
func TestFieldsRunHeaderList(t *testing.T) {
	dir := t.TempDir()
	synonyms := writeTempFile(t, dir, "synonyms.yaml", testSynonymsYAML)

	cmd := NewFieldsCommand(&FieldsCommandDeps{Config: testCLIConfig()})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{
		"--headers", "Obra,Interprete,Autor da Obra,Duração",
		"--synonyms", synonyms,
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("fields failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Obra", "Interprete", "Autor da Obra"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should mention resolved header %q, got: %s", want, output)
		}
	}
	if !strings.Contains(output, "isrc") || !strings.Contains(output, "(unresolved)") {
		t.Errorf("output should flag unresolved fields, got: %s", output)
	}
	if !strings.Contains(output, "passthrough: Duração") {
		t.Errorf("output should list passthrough headers, got: %s", output)
	}
}

// TestFieldsRunSampleDetectsHeaderRow finds the real header row below a
// report preamble.
func TestFieldsRunSampleDetectsHeaderRow(t *testing.T) {
	dir := t.TempDir()
	synonyms := writeTempFile(t, dir, "synonyms.yaml", testSynonymsYAML)
	sample := writeTempFile(t, dir, "relatorio.csv",
		"Relatório de Execuções,,\n"+
			"Período: 2024,,\n"+
			"Obra,Interprete,Autor da Obra\n"+
			"Coração Valente,Valesca,Dudu Falcão\n")

	cmd := NewFieldsCommand(&FieldsCommandDeps{Config: testCLIConfig()})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--sample", sample, "--synonyms", synonyms})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("fields failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "header row detected at sheet row 3") {
		t.Errorf("output should report the detected header row, got: %s", output)
	}
	if !strings.Contains(output, "Obra") {
		t.Errorf("output should resolve against the detected row, got: %s", output)
	}
}

// TestFieldsRunJSONReport renders the resolution report as JSON.
func TestFieldsRunJSONReport(t *testing.T) {
	dir := t.TempDir()
	synonyms := writeTempFile(t, dir, "synonyms.yaml", testSynonymsYAML)

	cmd := NewFieldsCommand(&FieldsCommandDeps{Config: testCLIConfig()})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{
		"--headers", "Obra,Interprete",
		"--synonyms", synonyms,
		"--output", "json",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("fields failed: %v", err)
	}

	var report map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("output should be valid JSON: %v", err)
	}
	resolution, ok := report["resolution"].(map[string]interface{})
	if !ok {
		t.Fatalf("report missing resolution map: %v", report)
	}
	if _, ok := resolution["title"]; !ok {
		t.Errorf("resolution should contain title, got: %v", resolution)
	}
	unresolved, ok := report["unresolved_fields"].([]interface{})
	if !ok || len(unresolved) == 0 {
		t.Errorf("report should list unresolved fields, got: %v", report["unresolved_fields"])
	}
}

// TestFieldsRunRequiresInput errors without --headers or --sample.
func TestFieldsRunRequiresInput(t *testing.T) {
	dir := t.TempDir()
	synonyms := writeTempFile(t, dir, "synonyms.yaml", testSynonymsYAML)

	cmd := NewFieldsCommand(&FieldsCommandDeps{Config: testCLIConfig()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--synonyms", synonyms})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("fields without input should fail")
	}
	if !strings.Contains(err.Error(), "either --headers or --sample is required") {
		t.Errorf("unexpected error: %v", err)
	}
}
