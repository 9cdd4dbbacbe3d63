// Package models defines the domain types shared across the roster import
// pipeline: raw and validated records, skip reports, portal roles and
// generated identities.
package models

import (
	"fmt"
	"strings"
)

// Canonical field names used by the header mapper and validator.
const (
	FieldName          = "name"
	FieldMobile        = "mobile"
	FieldGender        = "gender"
	FieldBatchCode     = "batchCode"
	FieldAdmissionDate = "admissionDate"
	FieldRoll          = "roll"
	FieldSection       = "section"
	FieldCourse        = "course"

	FieldDOB              = "dob"
	FieldEmail            = "email"
	FieldGrade            = "grade"
	FieldCourseID         = "courseId"
	FieldAddress          = "address"
	FieldPermanentAddress = "permanentAddress"
	FieldPincode          = "pincode"
	FieldSerialNo         = "serialNo"
	FieldFormNo           = "formNo"
	FieldEnrollmentNo     = "enrollmentNo"
	FieldGuardianName     = "guardianName"
	FieldGuardianPhone    = "guardianPhone"
	FieldGuardianEmail    = "guardianEmail"
	FieldBloodGroup       = "bloodGroup"
	FieldNationality      = "nationality"
	FieldReligion         = "religion"
	FieldCategory         = "category"
)

// RequiredFields lists the fields every accepted roster record must carry.
var RequiredFields = []string{
	FieldName,
	FieldMobile,
	FieldGender,
	FieldBatchCode,
	FieldAdmissionDate,
	FieldRoll,
	FieldSection,
	FieldCourse,
}

// RawRow is one spreadsheet or CSV row as an ordered sequence of text cells.
type RawRow = []string

// HeaderMap maps a canonical field name to its source column index.
type HeaderMap map[string]int

// CandidateRecord holds the field-named raw values of one data row before
// validation. Absent fields have no key.
type CandidateRecord map[string]string

// Get returns the trimmed value for field, or "" if absent.
func (c CandidateRecord) Get(field string) string {
	return c[field]
}

// Has reports whether field carries a non-empty value.
func (c CandidateRecord) Has(field string) bool {
	return strings.TrimSpace(c[field]) != ""
}

// ValidatedRecord is a roster record that passed the required-field and
// admission-date checks. AdmissionDate is always ISO YYYY-MM-DD.
type ValidatedRecord struct {
	Name          string `json:"name"`
	Mobile        string `json:"mobile"`
	Gender        string `json:"gender"`
	BatchCode     string `json:"batchCode"`
	AdmissionDate string `json:"admissionDate"`
	Roll          string `json:"roll"`
	Section       string `json:"section"`
	Course        string `json:"course"`

	DOB              string `json:"dob,omitempty"`
	Email            string `json:"email,omitempty"`
	Address          string `json:"address,omitempty"`
	PermanentAddress string `json:"permanentAddress,omitempty"`
	Pincode          string `json:"pincode,omitempty"`
	SerialNo         string `json:"serialNo,omitempty"`
	FormNo           string `json:"formNo,omitempty"`
	EnrollmentNo     string `json:"enrollmentNo,omitempty"`
	GuardianName     string `json:"guardianName,omitempty"`
	GuardianPhone    string `json:"guardianPhone,omitempty"`
	GuardianEmail    string `json:"guardianEmail,omitempty"`
	BloodGroup       string `json:"bloodGroup,omitempty"`
	Nationality      string `json:"nationality,omitempty"`
	Religion         string `json:"religion,omitempty"`
	Category         string `json:"category,omitempty"`
}

// String returns a short representation for logging.
func (r *ValidatedRecord) String() string {
	return fmt.Sprintf("Record{Name: %s, Roll: %s, Batch: %s, Admitted: %s}",
		r.Name, r.Roll, r.BatchCode, r.AdmissionDate)
}

// SkipReason records a rejected data row with its 1-based row number.
type SkipReason struct {
	RowNumber int    `json:"row"`
	Reason    string `json:"reason"`
}

func (s SkipReason) String() string {
	return fmt.Sprintf("row %d: %s", s.RowNumber, s.Reason)
}

// Skip reasons emitted by the row validator.
const (
	ReasonMissingRequired = "Missing required fields"
	ReasonInvalidDate     = "Invalid admission date format"
)

// Role is the closed set of portal roles credentials can be issued for.
type Role int

const (
	RoleStudent Role = iota
	RoleParent
	RoleTeacher
)

// Prefix returns the three-letter login ID prefix for the role.
func (r Role) Prefix() string {
	switch r {
	case RoleStudent:
		return "STU"
	case RoleParent:
		return "PAR"
	case RoleTeacher:
		return "TCH"
	default:
		return "USR"
	}
}

// Label returns the human-readable name of the role.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleParent:
		return "parent"
	case RoleTeacher:
		return "teacher"
	default:
		return "user"
	}
}

// ParseRole maps a role name to its Role value.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "parent", "guardian":
		return RoleParent, nil
	case "teacher", "staff":
		return RoleTeacher, nil
	default:
		return RoleStudent, fmt.Errorf("unknown role %q: must be student, parent or teacher", s)
	}
}

// GenerationContext carries the inputs for one identity generation.
type GenerationContext struct {
	Role          Role
	BatchCode     string
	JoiningYear   int
	ReferenceName string
}

// PortalIdentity is a generated login credential pair. It is never persisted
// by this subsystem; the caller hands it to an export or a registration call.
type PortalIdentity struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// ImportOutcome aggregates the local result of running the pipeline over one
// uploaded file, before anything is submitted.
type ImportOutcome struct {
	Accepted         []ValidatedRecord `json:"accepted"`
	Skipped          []SkipReason      `json:"skipped,omitempty"`
	DuplicateHeaders []string          `json:"duplicateHeaders,omitempty"`
	Positional       bool              `json:"positional,omitempty"`
}

// RowError is one per-row error reported by the persistence collaborator.
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// SubmissionResult is the persistence collaborator's own account of a batch
// submission, surfaced verbatim to the operator.
type SubmissionResult struct {
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors,omitempty"`
}
