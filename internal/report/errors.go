package report

import (
	"fmt"

	reporterrors "sessioncli/internal/errors"
)

// ErrTypeUnknown classifies step failures that carry no ReportError
const ErrTypeUnknown reporterrors.ErrorType = "UNKNOWN"

// StepError records which report failed and why
type StepError struct {
	Step  string
	Cause error
}

// NewStepError wraps cause for the given step
func NewStepError(step string, cause error) *StepError {
	return &StepError{Step: step, Cause: cause}
}

// Error implements the error interface
func (e *StepError) Error() string {
	if e == nil {
		return "unknown step error"
	}
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Cause)
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ErrorType returns the typed report error category of the cause, or
// "UNKNOWN" for plain IO and setup errors.
func (e *StepError) ErrorType() reporterrors.ErrorType {
	if t, ok := reporterrors.GetErrorType(e.Cause); ok {
		return t
	}
	return ErrTypeUnknown
}
