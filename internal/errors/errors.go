package errors

import (
	stderrors "errors"
	"fmt"

	"dealdesk/pkg/contracts/domain"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeStructuralParse marks a sheet whose grid has no usable header
	// row or a column count mismatch. Fatal for that sheet, recoverable at
	// the workbook level by skipping it.
	ErrTypeStructuralParse ErrorType = "STRUCTURAL_PARSE"
	// ErrTypeClassification marks a row that matched no category rule.
	ErrTypeClassification ErrorType = "CLASSIFICATION"
	// ErrTypeLockedPeriod marks a mutation attempted against a locked
	// period. Rejected before any recompute runs.
	ErrTypeLockedPeriod ErrorType = "LOCKED_PERIOD"
	// ErrTypeOverrideConflict marks an override whose prerequisite inputs
	// are absent.
	ErrTypeOverrideConflict ErrorType = "OVERRIDE_CONFLICT"
	// ErrTypeDuplicatePeriod marks a violation of the
	// (opportunity, period type, year, quarter) uniqueness constraint.
	ErrTypeDuplicatePeriod ErrorType = "DUPLICATE_PERIOD"
	ErrTypeNotFound        ErrorType = "NOT_FOUND"
	ErrTypeValidation      ErrorType = "VALIDATION"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeConfig          ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper functions for common error types

// NewStructuralParseError creates a sheet-level parse error
func NewStructuralParseError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStructuralParse, message, cause)
}

// NewClassificationError creates a classification-ambiguity error
func NewClassificationError(label string) *AppError {
	return NewAppError(ErrTypeClassification, fmt.Sprintf("no category rule matches %q", label), nil).
		WithContext("label", label)
}

// NewLockedPeriodError creates a locked-period mutation error
func NewLockedPeriodError(key domain.PeriodKey) *AppError {
	return NewAppError(ErrTypeLockedPeriod, fmt.Sprintf("period %s is locked", key), nil).
		WithContext("period_key", key.String())
}

// NewOverrideConflictError creates an override-conflict error
func NewOverrideConflictError(field string) *AppError {
	return NewAppError(ErrTypeOverrideConflict, fmt.Sprintf("override %s has no prerequisite inputs", field), nil).
		WithContext("field", field)
}

// NewDuplicatePeriodError creates a uniqueness-conflict error for the
// persistence boundary. Callers must be able to tell this apart from a
// generic storage failure.
func NewDuplicatePeriodError(key domain.PeriodKey) *AppError {
	return NewAppError(ErrTypeDuplicatePeriod, fmt.Sprintf("period %s already exists", key), nil).
		WithContext("period_key", key.String())
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsLockedPeriod reports whether err is a locked-period rejection.
func IsLockedPeriod(err error) bool { return IsType(err, ErrTypeLockedPeriod) }

// IsDuplicatePeriod reports whether err is a period uniqueness conflict.
func IsDuplicatePeriod(err error) bool { return IsType(err, ErrTypeDuplicatePeriod) }

// IsStructuralParse reports whether err is a sheet-level parse failure.
func IsStructuralParse(err error) bool { return IsType(err, ErrTypeStructuralParse) }
