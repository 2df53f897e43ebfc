package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/igorlobovc/claimsift/config"
	"github.com/igorlobovc/claimsift/pkg/headers"
	"github.com/igorlobovc/claimsift/pkg/usage"
)

// Fields command flags.
var (
	fieldsHeaders  string
	fieldsSample   string
	fieldsSynonyms string
	fieldsOutput   string
)

// FieldsCommandDeps holds the dependencies for the fields command.
type FieldsCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultFieldsDeps returns the default dependencies for production use.
func DefaultFieldsDeps() *FieldsCommandDeps {
	return &FieldsCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// fieldsReport is the machine-readable resolution report.
type fieldsReport struct {
	Headers     []string                       `json:"headers"`
	HeaderRow   int                            `json:"header_row"`
	Detected    bool                           `json:"detected"`
	Resolution  map[string][]headers.Candidate `json:"resolution"`
	Unresolved  []string                       `json:"unresolved_fields"`
	Passthrough []string                       `json:"passthrough_headers"`
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(deps *FieldsCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultFieldsDeps()
	}

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Inspect header field resolution for a supplier layout",
		Long: `Inspect how supplier spreadsheet headers resolve to canonical fields.

Give either a comma-separated header list or a sample CSV. With a sample,
the header-row detector also reports whether a better header row was found
below a preamble.

Examples:
  claimsift fields --headers "Obra,Autor da Obra,Int?rprete" --synonyms synonyms.yaml
  claimsift fields --sample relatorio.csv --synonyms synonyms.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd, deps)
		},
	}

	cmd.Flags().StringVar(&fieldsHeaders, "headers", "", "Comma-separated header list")
	cmd.Flags().StringVar(&fieldsSample, "sample", "", "Sample CSV to inspect")
	cmd.Flags().StringVar(&fieldsSynonyms, "synonyms", "", "Header synonym table YAML")
	cmd.Flags().StringVar(&fieldsOutput, "output", "", "Report format: text or json")

	return cmd
}

func runFields(cmd *cobra.Command, deps *FieldsCommandDeps) error {
	cfg := deps.Config
	if cfg == nil {
		loaded, err := deps.LoadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
	}

	table, err := loadSynonymTable(fieldsSynonyms, cfg)
	if err != nil {
		return err
	}

	report := fieldsReport{HeaderRow: 0}
	switch {
	case fieldsHeaders != "":
		for _, h := range strings.Split(fieldsHeaders, ",") {
			report.Headers = append(report.Headers, strings.TrimSpace(h))
		}
	case fieldsSample != "":
		rows, err := usage.ReadRawCSV(fieldsSample)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("sample %s is empty", fieldsSample)
		}
		report.Headers = rows[0]

		detector := headers.NewRowDetector(table, nil, 0)
		resolution := headers.ResolveFields(rows[0], table)
		_, hasTitle := resolution[headers.FieldTitle]
		hasPeople := false
		for _, f := range []string{headers.FieldArtist, headers.FieldAuthor, headers.FieldRightsholderOwner} {
			if _, ok := resolution[f]; ok {
				hasPeople = true
				break
			}
		}
		if detector.ShouldDetect(rows[0], hasTitle, hasPeople) {
			if idx, ok := detector.DetectHeaderRow(rows); ok && idx != 0 {
				report.HeaderRow = idx
				report.Detected = true
				report.Headers = rows[idx]
			}
		}
	default:
		return fmt.Errorf("either --headers or --sample is required")
	}

	report.Resolution = headers.ResolveFields(report.Headers, table)

	for _, f := range table.Fields() {
		if _, ok := report.Resolution[f]; !ok {
			report.Unresolved = append(report.Unresolved, f)
		}
	}
	claimed := make(map[string]struct{})
	for _, cands := range report.Resolution {
		for _, c := range cands {
			claimed[c.Column] = struct{}{}
		}
	}
	for _, h := range report.Headers {
		if _, ok := claimed[h]; !ok && strings.TrimSpace(h) != "" {
			report.Passthrough = append(report.Passthrough, h)
		}
	}

	out := cmd.OutOrStdout()
	format := config.OutputFormat(fieldsOutput)
	if format == "" && cfg != nil {
		format = cfg.OutputFormat
	}
	if format == config.OutputFormatJSON {
		return writeJSON(out, report)
	}

	if report.Detected {
		fmt.Fprintf(out, "header row detected at sheet row %d\n", report.HeaderRow+1)
	}
	for _, f := range table.Fields() {
		cands, ok := report.Resolution[f]
		if !ok {
			fmt.Fprintf(out, "%-20s (unresolved)\n", f)
			continue
		}
		names := make([]string, 0, len(cands))
		for _, c := range cands {
			names = append(names, fmt.Sprintf("%s (score %d)", c.Column, c.Score))
		}
		fmt.Fprintf(out, "%-20s %s\n", f, strings.Join(names, ", "))
	}
	if len(report.Passthrough) > 0 {
		fmt.Fprintf(out, "passthrough: %s\n", strings.Join(report.Passthrough, ", "))
	}
	return nil
}
