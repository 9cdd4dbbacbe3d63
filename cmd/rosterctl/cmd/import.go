package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"school-roster-service/cmd/rosterctl/config"
	"school-roster-service/internal/importer"
	"school-roster-service/internal/models"
	"school-roster-service/internal/reporter"
	rostererrors "school-roster-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the import command
var (
	importConfirm    bool
	importDryRun     bool
	importFormat     string
	importOutputFile string
	importTimeout    time.Duration
	showProgress     bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a roster spreadsheet into the school-management service",
	Long: `Import parses a roster file (.csv, .xlsx or .xls), maps its columns to the
canonical student fields, validates every row, and submits the accepted
records to the server as one batch.

Rows that fail validation are reported with their row number and reason.
When some rows were skipped, the batch is only submitted with --confirm or
an interactive yes; partial data is never imported silently.

Examples:
  # Validate and import a clean file
  rosterctl import roster.csv

  # See what would be imported without touching the server
  rosterctl import roster.xlsx --dry-run

  # Accept a partial import without the interactive prompt
  rosterctl import roster.csv --confirm

  # Machine-readable report
  rosterctl import roster.csv --dry-run --output-format json`,

	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importConfirm, "confirm", false, "submit even when rows were skipped, without prompting")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate only; do not submit anything")
	importCmd.Flags().StringVarP(&importFormat, "output-format", "f", "console", "report format: console, json, csv")
	importCmd.Flags().StringVarP(&importOutputFile, "output-file", "o", "", "report file path (default: stdout)")
	importCmd.Flags().DurationVar(&importTimeout, "timeout", 30*time.Second, "server request timeout")
	importCmd.Flags().BoolVar(&showProgress, "progress", false, "show step progress")

	viper.BindPFlag("confirm", importCmd.Flags().Lookup("confirm"))
	viper.BindPFlag("dry-run", importCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("output-format", importCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("timeout", importCmd.Flags().Lookup("timeout"))
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	format := reporter.OutputFormat(importFormat)
	if !format.IsValid() {
		return fmt.Errorf("invalid output format %q: must be console, json or csv", importFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rostererrors.FileError(rostererrors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return rostererrors.FileError(rostererrors.CodeFilePermission, path, err)
		}
		return rostererrors.InternalError("reading roster file", err)
	}

	client := importer.NewClient(config.ServerURL(), importTimeout)
	orchestrator := importer.NewOrchestrator(client)
	if showProgress {
		orchestrator.SetProgressFunc(func(step string, processed, total int) {
			if total > 0 {
				fmt.Fprintf(os.Stderr, "\r%s: %d/%d", step, processed, total)
				if processed == total {
					fmt.Fprintln(os.Stderr)
				}
			}
		})
	}

	report := &reporter.ImportReport{File: path}

	if importDryRun {
		outcome, err := orchestrator.Validate(path, data)
		report.Outcome = outcome
		if err != nil {
			writeReportBestEffort(report, format)
			return err
		}
		return writeReport(report, format)
	}

	confirm := confirmFunc()
	outcome, result, err := orchestrator.ProcessFile(context.Background(), path, data, confirm)
	report.Outcome = outcome
	report.Submission = result
	if err != nil {
		writeReportBestEffort(report, format)
		return err
	}
	return writeReport(report, format)
}

// confirmFunc builds the partial-import gate: --confirm approves up front,
// otherwise the operator is shown the skip report and prompted.
func confirmFunc() importer.ConfirmFunc {
	if importConfirm || viper.GetBool("confirm") {
		return func(*models.ImportOutcome) bool { return true }
	}
	return func(outcome *models.ImportOutcome) bool {
		fmt.Fprintf(os.Stderr, "%d row(s) will be skipped:\n", len(outcome.Skipped))
		for _, skip := range outcome.Skipped {
			fmt.Fprintf(os.Stderr, "  %s\n", skip)
		}
		fmt.Fprintf(os.Stderr, "Import the remaining %d record(s)? [y/N]: ", len(outcome.Accepted))

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes"
	}
}

func writeReport(report *reporter.ImportReport, format reporter.OutputFormat) error {
	out := os.Stdout
	if importOutputFile != "" {
		f, err := os.Create(importOutputFile)
		if err != nil {
			return rostererrors.InternalError("creating report file", err)
		}
		defer f.Close()
		out = f
	}
	return reporter.Write(out, report, format)
}

// writeReportBestEffort surfaces whatever was learned before a failure; the
// failure itself is what the caller reports.
func writeReportBestEffort(report *reporter.ImportReport, format reporter.OutputFormat) {
	if report.Outcome == nil {
		return
	}
	_ = writeReport(report, format)
}
