package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of report error
type ErrorType string

const (
	ErrTypeSchema       ErrorType = "SCHEMA"
	ErrTypeJoinMismatch ErrorType = "JOIN_MISMATCH"
	ErrTypeParse        ErrorType = "PARSE"
	ErrTypeArithmetic   ErrorType = "ARITHMETIC"
)

// ReportError represents a failure while loading or computing a report.
// Row is the 1-based row number within the sheet or table, or -1 when not
// applicable.
type ReportError struct {
	Type    ErrorType
	Report  string
	Sheet   string
	Column  string
	Row     int
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *ReportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", e.Type)
	if e.Report != "" {
		fmt.Fprintf(&b, " report %s:", e.Report)
	}
	var loc []string
	if e.Sheet != "" {
		loc = append(loc, "sheet "+e.Sheet)
	}
	if e.Column != "" {
		loc = append(loc, "column "+e.Column)
	}
	if e.Row >= 0 {
		loc = append(loc, fmt.Sprintf("row %d", e.Row))
	}
	if len(loc) > 0 {
		fmt.Fprintf(&b, " %s:", strings.Join(loc, ", "))
	}
	fmt.Fprintf(&b, " %s", e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to work with ReportError
func (e *ReportError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *ReportError) WithContext(key string, value interface{}) *ReportError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithReport tags the error with the report that raised it
func (e *ReportError) WithReport(report string) *ReportError {
	e.Report = report
	return e
}

// WithSheet tags the error with the sheet it was raised for
func (e *ReportError) WithSheet(sheet string) *ReportError {
	e.Sheet = sheet
	return e
}

// WithColumn tags the error with a column name
func (e *ReportError) WithColumn(column string) *ReportError {
	e.Column = column
	return e
}

// WithRow tags the error with a row number
func (e *ReportError) WithRow(row int) *ReportError {
	e.Row = row
	return e
}

// NewReportError creates a new report error
func NewReportError(errType ErrorType, message string, cause error) *ReportError {
	return &ReportError{
		Type:    errType,
		Row:     -1,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewSchemaError creates an error for a missing sheet, missing column or
// a cell that cannot be decoded
func NewSchemaError(message string, cause error) *ReportError {
	return NewReportError(ErrTypeSchema, message, cause)
}

// NewJoinMismatchError creates an error describing join keys present on one side only
func NewJoinMismatchError(message string) *ReportError {
	return NewReportError(ErrTypeJoinMismatch, message, nil)
}

// NewParseError creates an error for malformed payload text
func NewParseError(message string, cause error) *ReportError {
	return NewReportError(ErrTypeParse, message, cause)
}

// NewArithmeticError creates an error for an undefined computation
func NewArithmeticError(message string) *ReportError {
	return NewReportError(ErrTypeArithmetic, message, nil)
}

// GetErrorType returns the type of the first ReportError in the chain
func GetErrorType(err error) (ErrorType, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Type, true
	}
	return "", false
}

// IsType reports whether err carries a ReportError of the given type
func IsType(err error, errType ErrorType) bool {
	t, ok := GetErrorType(err)
	return ok && t == errType
}

// ErrorList collects errors from independent steps
type ErrorList struct {
	Errors []error
}

// Add adds a non-nil error to the list
func (el *ErrorList) Add(err error) {
	if err != nil {
		el.Errors = append(el.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Error implements the error interface
func (el *ErrorList) Error() string {
	switch len(el.Errors) {
	case 0:
		return "no errors"
	case 1:
		return el.Errors[0].Error()
	}
	msgs := make([]string, len(el.Errors))
	for i, err := range el.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors occurred: %s", len(el.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (el *ErrorList) Unwrap() []error {
	return el.Errors
}

// ErrorOrNil returns the list as an error, or nil when empty
func (el *ErrorList) ErrorOrNil() error {
	if el.HasErrors() {
		return el
	}
	return nil
}
