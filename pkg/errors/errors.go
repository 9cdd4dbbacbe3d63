// Package errors provides categorized error types for the roster import
// pipeline, carrying an error code, an optional fix suggestion, and enough
// context to map failures to CLI exit codes.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile       ErrorCategory = "file"
	CategoryParse      ErrorCategory = "parse"
	CategoryValidation ErrorCategory = "validation"
	CategoryImport     ErrorCategory = "import"
	CategoryNetwork    ErrorCategory = "network"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound      ErrorCode = "file_not_found"
	CodeFilePermission    ErrorCode = "file_permission"
	CodeUnsupportedFormat ErrorCode = "unsupported_format"

	// Parse errors
	CodeEmptyFile      ErrorCode = "empty_file"
	CodeWorkbookBroken ErrorCode = "workbook_broken"

	// Validation errors
	CodeMissingField ErrorCode = "missing_field"
	CodeInvalidDate  ErrorCode = "invalid_date"
	CodeNoValidRows  ErrorCode = "no_valid_rows"

	// Import errors
	CodeConfirmationRequired ErrorCode = "confirmation_required"
	CodeSubmissionRejected   ErrorCode = "submission_rejected"

	// Network errors
	CodeSubmissionFailed ErrorCode = "submission_failed"
	CodeIssuanceFailed   ErrorCode = "issuance_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// RosterError is the base error type for all application errors
type RosterError struct {
	Category   ErrorCategory `json:"category"`
	Code       ErrorCode     `json:"code"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
	Context    Context       `json:"context,omitempty"`
	Cause      error         `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *RosterError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *RosterError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *RosterError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryImport, CategoryInternal:
		return 5
	case CategoryNetwork:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *RosterError) WithContext(key string, value interface{}) *RosterError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *RosterError) WithSuggestion(suggestion string) *RosterError {
	e.Suggestion = suggestion
	return e
}

// New creates a new RosterError
func New(category ErrorCategory, code ErrorCode, message string) *RosterError {
	return &RosterError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap wraps an existing error with RosterError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *RosterError {
	if err == nil {
		return nil
	}
	return &RosterError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    errors.WithStack(err),
	}
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *RosterError {
	var message, suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeUnsupportedFormat:
		message = fmt.Sprintf("unsupported file format: %s", path)
		suggestion = "upload a .csv, .xlsx or .xls roster file"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	result := New(CategoryFile, code, message).WithSuggestion(suggestion)
	result.Cause = err
	return result.WithContext("path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, path string, err error) *RosterError {
	var message, suggestion string

	switch code {
	case CodeEmptyFile:
		message = fmt.Sprintf("file contains no rows: %s", path)
		suggestion = "ensure the file has a header row and at least one data row"
	case CodeWorkbookBroken:
		message = fmt.Sprintf("workbook could not be decoded: %s", path)
		suggestion = "re-export the spreadsheet and upload it again"
	default:
		message = fmt.Sprintf("parse error: %s", path)
	}

	result := New(CategoryParse, code, message).WithSuggestion(suggestion)
	result.Cause = err
	return result.WithContext("path", path)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, message string) *RosterError {
	return New(CategoryValidation, code, message)
}

// ImportError creates an import-workflow error
func ImportError(code ErrorCode, message string, err error) *RosterError {
	result := New(CategoryImport, code, message)
	result.Cause = err
	return result
}

// NetworkError creates a network-related error
func NetworkError(code ErrorCode, message string, err error) *RosterError {
	result := New(CategoryNetwork, code, message)
	result.Cause = err
	return result
}

// InternalError creates an internal error
func InternalError(operation string, err error) *RosterError {
	result := New(CategoryInternal, CodeUnexpectedError,
		fmt.Sprintf("unexpected error during %s", operation))
	result.Cause = errors.WithStack(err)
	return result.WithContext("operation", operation)
}

// AsRosterError extracts a RosterError from an error chain.
func AsRosterError(err error) (*RosterError, bool) {
	var re *RosterError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsCode reports whether err is a RosterError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var re *RosterError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// GetCategory extracts the category from an error, defaulting to internal
func GetCategory(err error) ErrorCategory {
	var re *RosterError
	if errors.As(err, &re) {
		return re.Category
	}
	return CategoryInternal
}
