package importer

import (
	"context"
	"testing"

	"school-roster-service/internal/models"
	"school-roster-service/pkg/errors"
)

type fakeSubmitter struct {
	batches [][]models.ValidatedRecord
	result  *models.SubmissionResult
	err     error
}

func (f *fakeSubmitter) SubmitBatch(ctx context.Context, records []models.ValidatedRecord) (*models.SubmissionResult, error) {
	f.batches = append(f.batches, records)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &models.SubmissionResult{Imported: len(records)}, nil
}

const cleanCSV = "Name,Mobile,Gender,Batch,Admission Date,Roll,Section,Course\n" +
	"Asha Rao,9876543210,female,2024A,05/06/2024,12,A,Science\n"

const mixedCSV = "Name,Mobile,Gender,Batch,Admission Date,Roll,Section,Course\n" +
	"Asha Rao,9876543210,female,2024A,05/06/2024,12,A,Science\n" +
	"Ravi Iyer,9876500001,male,2024A,31/13/2024,13,A,Science\n" +
	",,,,,,,\n" +
	"Meera Nair,9876500002,female,,2024-06-10,14,B,\n"

func TestOrchestrator_Validate_CleanFile(t *testing.T) {
	o := NewOrchestrator(&fakeSubmitter{})
	outcome, err := o.Validate("roster.csv", []byte(cleanCSV))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(outcome.Accepted) != 1 {
		t.Fatalf("Accepted = %d, want 1", len(outcome.Accepted))
	}
	if len(outcome.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", outcome.Skipped)
	}
	if outcome.Accepted[0].AdmissionDate != "2024-06-05" {
		t.Errorf("AdmissionDate = %q, want 2024-06-05", outcome.Accepted[0].AdmissionDate)
	}
}

func TestOrchestrator_Validate_MixedFile(t *testing.T) {
	o := NewOrchestrator(&fakeSubmitter{})
	outcome, err := o.Validate("roster.csv", []byte(mixedCSV))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(outcome.Accepted) != 1 {
		t.Errorf("Accepted = %d, want 1", len(outcome.Accepted))
	}
	// Blank row is silent; invalid date and missing batch/course are skips.
	if len(outcome.Skipped) != 2 {
		t.Fatalf("Skipped = %v, want 2 reasons", outcome.Skipped)
	}
	if outcome.Skipped[0].RowNumber != 2 || outcome.Skipped[0].Reason != models.ReasonInvalidDate {
		t.Errorf("First skip = %v", outcome.Skipped[0])
	}
	if outcome.Skipped[1].RowNumber != 4 || outcome.Skipped[1].Reason != models.ReasonMissingRequired {
		t.Errorf("Second skip = %v", outcome.Skipped[1])
	}
}

func TestOrchestrator_UnsupportedFormat(t *testing.T) {
	o := NewOrchestrator(&fakeSubmitter{})
	_, err := o.Validate("roster.pdf", []byte("%PDF"))
	if !errors.IsCode(err, errors.CodeUnsupportedFormat) {
		t.Fatalf("Expected unsupported_format, got %v", err)
	}
}

func TestOrchestrator_EmptyFile(t *testing.T) {
	o := NewOrchestrator(&fakeSubmitter{})
	_, err := o.Validate("roster.csv", nil)
	if !errors.IsCode(err, errors.CodeEmptyFile) {
		t.Fatalf("Expected empty_file, got %v", err)
	}
}

func TestOrchestrator_NoValidRows(t *testing.T) {
	csv := "Name,Mobile,Gender,Batch,Admission Date,Roll,Section,Course\n" +
		"Asha Rao,9876543210,female,2024A,never,12,A,Science\n"
	o := NewOrchestrator(&fakeSubmitter{})
	outcome, err := o.Validate("roster.csv", []byte(csv))
	if !errors.IsCode(err, errors.CodeNoValidRows) {
		t.Fatalf("Expected no_valid_rows, got %v", err)
	}
	if outcome == nil || len(outcome.Skipped) != 1 {
		t.Errorf("Expected the skip report to survive the abort, got %v", outcome)
	}
}

func TestOrchestrator_HeaderlessFileIsPositional(t *testing.T) {
	csv := "Asha Rao,9876543210,female,2024A,05/06/2024,12,A,Science\n"
	o := NewOrchestrator(&fakeSubmitter{})
	outcome, err := o.Validate("roster.csv", []byte(csv))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !outcome.Positional {
		t.Error("Expected positional mapping for headerless file")
	}
	if len(outcome.Accepted) != 1 {
		t.Fatalf("Accepted = %d, want 1 (row 0 treated as data)", len(outcome.Accepted))
	}
	if outcome.Accepted[0].Name != "Asha Rao" {
		t.Errorf("Name = %q", outcome.Accepted[0].Name)
	}
}

func TestOrchestrator_DuplicateHeadersWarned(t *testing.T) {
	csv := "Name,Student Name,Mobile,Gender,Batch,Admission Date,Roll,Section,Course\n" +
		"ignored,Asha Rao,9876543210,female,2024A,2024-06-05,12,A,Science\n"
	o := NewOrchestrator(&fakeSubmitter{})
	outcome, err := o.Validate("roster.csv", []byte(csv))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(outcome.DuplicateHeaders) != 1 {
		t.Fatalf("DuplicateHeaders = %v, want one entry", outcome.DuplicateHeaders)
	}
	if outcome.Accepted[0].Name != "Asha Rao" {
		t.Errorf("Expected right-most name column to win, got %q", outcome.Accepted[0].Name)
	}
}

func TestProcessFile_PartialNeedsConfirmation(t *testing.T) {
	sub := &fakeSubmitter{}
	o := NewOrchestrator(sub)

	_, _, err := o.ProcessFile(context.Background(), "roster.csv", []byte(mixedCSV), nil)
	if !errors.IsCode(err, errors.CodeConfirmationRequired) {
		t.Fatalf("Expected confirmation_required, got %v", err)
	}
	if len(sub.batches) != 0 {
		t.Fatal("Nothing may be submitted without confirmation")
	}

	declined := false
	_, _, err = o.ProcessFile(context.Background(), "roster.csv", []byte(mixedCSV),
		func(outcome *models.ImportOutcome) bool {
			declined = true
			return false
		})
	if !errors.IsCode(err, errors.CodeConfirmationRequired) {
		t.Fatalf("Expected confirmation_required after decline, got %v", err)
	}
	if !declined {
		t.Error("Confirm callback was not invoked")
	}
	if len(sub.batches) != 0 {
		t.Fatal("Declined batch must not be submitted")
	}
}

func TestProcessFile_ConfirmedPartialSubmits(t *testing.T) {
	sub := &fakeSubmitter{result: &models.SubmissionResult{
		Imported: 1,
		Failed:   0,
	}}
	o := NewOrchestrator(sub)

	outcome, result, err := o.ProcessFile(context.Background(), "roster.csv", []byte(mixedCSV),
		func(*models.ImportOutcome) bool { return true })
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(sub.batches) != 1 || len(sub.batches[0]) != len(outcome.Accepted) {
		t.Errorf("Expected one batch with all accepted records, got %d", len(sub.batches))
	}
	if result.Imported != 1 {
		t.Errorf("Imported = %d, want 1", result.Imported)
	}
}

func TestProcessFile_CleanFileSkipsConfirmation(t *testing.T) {
	sub := &fakeSubmitter{}
	o := NewOrchestrator(sub)

	_, result, err := o.ProcessFile(context.Background(), "roster.csv", []byte(cleanCSV), nil)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if result == nil || result.Imported != 1 {
		t.Errorf("Expected clean batch to submit without confirmation, got %v", result)
	}
}
