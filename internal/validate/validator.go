// Package validate turns raw roster rows into typed, validated records or
// row-numbered skip reasons. It owns the required-field gate and the date
// normalization rules.
package validate

import (
	"strings"

	"school-roster-service/internal/mapping"
	"school-roster-service/internal/models"
)

// allFields is every canonical field the candidate builder reads.
var allFields = []string{
	models.FieldName,
	models.FieldMobile,
	models.FieldGender,
	models.FieldBatchCode,
	models.FieldAdmissionDate,
	models.FieldRoll,
	models.FieldSection,
	models.FieldCourse,
	models.FieldDOB,
	models.FieldEmail,
	models.FieldGrade,
	models.FieldCourseID,
	models.FieldAddress,
	models.FieldPermanentAddress,
	models.FieldPincode,
	models.FieldSerialNo,
	models.FieldFormNo,
	models.FieldEnrollmentNo,
	models.FieldGuardianName,
	models.FieldGuardianPhone,
	models.FieldGuardianEmail,
	models.FieldBloodGroup,
	models.FieldNationality,
	models.FieldReligion,
	models.FieldCategory,
}

// IsBlankRow reports whether every cell is empty after trimming. Blank rows
// are skipped silently and never counted as errors.
func IsBlankRow(row models.RawRow) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// BuildCandidate reads each field's mapped column out of the row. Fields
// still absent after the header-map pass are filled from the positional
// default layout, which covers files whose header row exists but is missing
// one expected column.
func BuildCandidate(row models.RawRow, hm models.HeaderMap) models.CandidateRecord {
	candidate := make(models.CandidateRecord)

	read := func(m models.HeaderMap, field string) string {
		idx, ok := m[field]
		if !ok || idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for _, field := range allFields {
		if v := read(hm, field); v != "" {
			candidate[field] = v
		}
	}

	positional := mapping.PositionalHeaderMap()
	for _, field := range allFields {
		if candidate.Has(field) {
			continue
		}
		if v := read(positional, field); v != "" {
			candidate[field] = v
		}
	}

	// Derived fallback: a file that only carries a class/grade or course-id
	// column still yields a course.
	if !candidate.Has(models.FieldCourse) {
		if candidate.Has(models.FieldGrade) {
			candidate[models.FieldCourse] = candidate.Get(models.FieldGrade)
		} else if candidate.Has(models.FieldCourseID) {
			candidate[models.FieldCourse] = candidate.Get(models.FieldCourseID)
		}
	}

	return candidate
}

// ValidateRow turns one raw row into a validated record or a skip reason.
// Both results are nil for a wholly blank row. rowNumber is 1-based.
func ValidateRow(row models.RawRow, hm models.HeaderMap, rowNumber int) (*models.ValidatedRecord, *models.SkipReason) {
	if IsBlankRow(row) {
		return nil, nil
	}

	candidate := BuildCandidate(row, hm)

	for _, field := range models.RequiredFields {
		if !candidate.Has(field) {
			return nil, &models.SkipReason{RowNumber: rowNumber, Reason: models.ReasonMissingRequired}
		}
	}

	admission := ToISO(candidate.Get(models.FieldAdmissionDate))
	if admission == "" {
		return nil, &models.SkipReason{RowNumber: rowNumber, Reason: models.ReasonInvalidDate}
	}

	// dob is optional; an unparseable value is dropped, not a skip.
	dob := ToISO(candidate.Get(models.FieldDOB))

	record := &models.ValidatedRecord{
		Name:          candidate.Get(models.FieldName),
		Mobile:        candidate.Get(models.FieldMobile),
		Gender:        candidate.Get(models.FieldGender),
		BatchCode:     candidate.Get(models.FieldBatchCode),
		AdmissionDate: admission,
		Roll:          candidate.Get(models.FieldRoll),
		Section:       candidate.Get(models.FieldSection),
		Course:        candidate.Get(models.FieldCourse),

		DOB:              dob,
		Email:            candidate.Get(models.FieldEmail),
		Address:          candidate.Get(models.FieldAddress),
		PermanentAddress: candidate.Get(models.FieldPermanentAddress),
		Pincode:          candidate.Get(models.FieldPincode),
		SerialNo:         candidate.Get(models.FieldSerialNo),
		FormNo:           candidate.Get(models.FieldFormNo),
		EnrollmentNo:     candidate.Get(models.FieldEnrollmentNo),
		GuardianName:     candidate.Get(models.FieldGuardianName),
		GuardianPhone:    candidate.Get(models.FieldGuardianPhone),
		GuardianEmail:    candidate.Get(models.FieldGuardianEmail),
		BloodGroup:       candidate.Get(models.FieldBloodGroup),
		Nationality:      candidate.Get(models.FieldNationality),
		Religion:         candidate.Get(models.FieldReligion),
		Category:         candidate.Get(models.FieldCategory),
	}

	return record, nil
}
