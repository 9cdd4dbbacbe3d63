// Package importer drives the full roster import workflow over one uploaded
// file: format dispatch, header decision, row validation, the partial-import
// confirmation gate, and batch submission to the persistence service.
package importer

import (
	"context"
	"path/filepath"
	"strings"

	"school-roster-service/internal/mapping"
	"school-roster-service/internal/models"
	"school-roster-service/internal/parsers"
	"school-roster-service/internal/validate"
	"school-roster-service/pkg/errors"
	"school-roster-service/pkg/logger"
)

// ConfirmFunc decides whether a partially-valid batch may be submitted. It
// receives the outcome so the caller can show the operator every skip reason
// first. Returning false aborts before any network effect.
type ConfirmFunc func(outcome *models.ImportOutcome) bool

// ProgressFunc is called as the orchestrator moves through its steps.
type ProgressFunc func(step string, processed, total int)

// BatchSubmitter is the persistence collaborator the finished batch goes to.
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, records []models.ValidatedRecord) (*models.SubmissionResult, error)
}

// Orchestrator coordinates the parse, map, validate and submit steps.
type Orchestrator struct {
	submitter BatchSubmitter
	logger    logger.Logger
	progress  ProgressFunc
}

// NewOrchestrator creates an orchestrator around a persistence collaborator.
func NewOrchestrator(submitter BatchSubmitter) *Orchestrator {
	return &Orchestrator{
		submitter: submitter,
		logger:    logger.GetGlobalLogger().WithComponent("import_orchestrator"),
	}
}

// SetProgressFunc installs an optional step-progress callback.
func (o *Orchestrator) SetProgressFunc(fn ProgressFunc) {
	o.progress = fn
}

func (o *Orchestrator) report(step string, processed, total int) {
	if o.progress != nil {
		o.progress(step, processed, total)
	}
}

// LoadRows dispatches an uploaded file to the right decoder by extension.
func LoadRows(filename string, data []byte) ([]models.RawRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parsers.ParseCSV(string(data)), nil
	case ".xlsx", ".xls":
		return parsers.ReadWorkbook(data, filename)
	default:
		return nil, errors.FileError(errors.CodeUnsupportedFormat, filename, nil)
	}
}

// Validate runs the pipeline over one uploaded file without submitting
// anything. Skip reasons are numbered by data row, 1-based.
func (o *Orchestrator) Validate(filename string, data []byte) (*models.ImportOutcome, error) {
	o.report("parsing", 0, 0)

	rows, err := LoadRows(filename, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.ParseError(errors.CodeEmptyFile, filename, nil)
	}

	outcome := &models.ImportOutcome{}

	hm, duplicates := mapping.BuildHeaderMap(rows[0])
	outcome.DuplicateHeaders = duplicates
	dataStart := 1

	if !mapping.HasRequiredField(hm) {
		// Row 0 recognized nothing required: fall back to the fixed column
		// order, and keep row 0 as data unless it still looks like a header.
		hm = mapping.PositionalHeaderMap()
		outcome.Positional = true
		if !mapping.IsHeaderRow(rows[0]) {
			dataStart = 0
		}
		o.logger.WithFields(logger.Fields{
			"file":        filename,
			"row0_is_data": dataStart == 0,
		}).Warn("No required headers recognized; using positional column order")
	}

	o.report("validating", 0, len(rows)-dataStart)
	for i, row := range rows[dataStart:] {
		record, skip := validate.ValidateRow(row, hm, i+1)
		switch {
		case record != nil:
			outcome.Accepted = append(outcome.Accepted, *record)
		case skip != nil:
			outcome.Skipped = append(outcome.Skipped, *skip)
		}
		o.report("validating", i+1, len(rows)-dataStart)
	}

	o.logger.WithFields(logger.Fields{
		"file":     filename,
		"accepted": len(outcome.Accepted),
		"skipped":  len(outcome.Skipped),
	}).Info("Validated roster file")

	if len(outcome.Accepted) == 0 {
		return outcome, errors.ValidationError(errors.CodeNoValidRows,
			"no rows survived validation; nothing to import").
			WithContext("skipped", len(outcome.Skipped))
	}

	return outcome, nil
}

// ProcessFile runs the full pipeline and, on confirmation, submits the
// accepted batch in one request. When rows were skipped, partial data is
// never imported silently: confirm must approve the outcome first.
func (o *Orchestrator) ProcessFile(ctx context.Context, filename string, data []byte, confirm ConfirmFunc) (*models.ImportOutcome, *models.SubmissionResult, error) {
	outcome, err := o.Validate(filename, data)
	if err != nil {
		return outcome, nil, err
	}

	if len(outcome.Skipped) > 0 {
		if confirm == nil || !confirm(outcome) {
			return outcome, nil, errors.ImportError(errors.CodeConfirmationRequired,
				"some rows were skipped; explicit confirmation is required before a partial import", nil).
				WithContext("accepted", len(outcome.Accepted)).
				WithContext("skipped", len(outcome.Skipped))
		}
	}

	o.report("submitting", 0, len(outcome.Accepted))
	result, err := o.submitter.SubmitBatch(ctx, outcome.Accepted)
	if err != nil {
		return outcome, nil, err
	}
	o.report("submitting", len(outcome.Accepted), len(outcome.Accepted))

	o.logger.WithFields(logger.Fields{
		"file":     filename,
		"imported": result.Imported,
		"failed":   result.Failed,
	}).Info("Batch submitted")

	return outcome, result, nil
}
