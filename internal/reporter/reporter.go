// Package reporter renders roster import outcomes for the operator.
//
// Supported output formats:
//   - Console: human-readable summary with the skip report
//   - JSON: structured data for programmatic consumption
//   - CSV: the skip report alone, for spreadsheet follow-up
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"school-roster-service/internal/models"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ImportReport bundles everything the operator sees after a run.
type ImportReport struct {
	File       string                   `json:"file"`
	Outcome    *models.ImportOutcome    `json:"outcome"`
	Submission *models.SubmissionResult `json:"submission,omitempty"`
}

// Write renders the report to w in the requested format.
func Write(w io.Writer, report *ImportReport, format OutputFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatCSV:
		return writeSkipCSV(w, report.Outcome.Skipped)
	case FormatConsole:
		return writeConsole(w, report)
	default:
		return fmt.Errorf("invalid output format: %s", format)
	}
}

func writeSkipCSV(w io.Writer, skipped []models.SkipReason) error {
	if _, err := io.WriteString(w, "row,reason\n"); err != nil {
		return err
	}
	for _, skip := range skipped {
		if _, err := fmt.Fprintf(w, "%d,%s\n", skip.RowNumber, skip.Reason); err != nil {
			return err
		}
	}
	return nil
}

func writeConsole(w io.Writer, report *ImportReport) error {
	outcome := report.Outcome

	fmt.Fprintf(w, "Import report for %s\n", report.File)
	fmt.Fprintln(w, strings.Repeat("=", 40))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Accepted rows:\t%d\n", len(outcome.Accepted))
	fmt.Fprintf(tw, "Skipped rows:\t%d\n", len(outcome.Skipped))
	if outcome.Positional {
		fmt.Fprintf(tw, "Header mapping:\tpositional (no headers recognized)\n")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(outcome.DuplicateHeaders) > 0 {
		fmt.Fprintf(w, "\nDuplicate header columns (right-most used): %s\n",
			strings.Join(outcome.DuplicateHeaders, ", "))
	}

	if len(outcome.Skipped) > 0 {
		fmt.Fprintln(w, "\nSkipped rows:")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ROW\tREASON")
		for _, skip := range outcome.Skipped {
			fmt.Fprintf(tw, "%d\t%s\n", skip.RowNumber, skip.Reason)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if sub := report.Submission; sub != nil {
		fmt.Fprintln(w, "\nServer result:")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Imported:\t%d\n", sub.Imported)
		fmt.Fprintf(tw, "Failed:\t%d\n", sub.Failed)
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, rowErr := range sub.Errors {
			fmt.Fprintf(w, "  record %d: %s\n", rowErr.Index, rowErr.Message)
		}
	}

	return nil
}
