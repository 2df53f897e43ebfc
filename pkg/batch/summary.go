package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteSummary writes the run summary as indented JSON to path.
func WriteSummary(path string, result *RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create run summary: %w", err)
	}
	defer f.Close()
	if err := EncodeSummary(f, result); err != nil {
		return err
	}
	return f.Close()
}

// EncodeSummary writes the run summary as indented JSON to w.
func EncodeSummary(w io.Writer, result *RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	return nil
}
