package errors

import (
	"errors"
	"fmt"
)

// Error codes for the progress engine.
const (
	// Storage errors
	ErrCodeQuotaExceeded = "STORAGE_QUOTA_EXCEEDED"
	ErrCodeBlocked       = "STORAGE_BLOCKED"
	ErrCodeStorage       = "STORAGE_ERROR"

	// Data errors
	ErrCodeCorruptData = "CORRUPT_DATA"

	// Import/export errors
	ErrCodeInvalidImport = "INVALID_IMPORT_PAYLOAD"

	// Validation errors
	ErrCodeInvalidGameID = "INVALID_GAME_ID"
	ErrCodeInvalidInput  = "INVALID_INPUT"
)

// ProgressError represents an error in the progress engine.
type ProgressError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProgressError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProgressError) Unwrap() error {
	return e.Err
}

// NewProgressError creates a new ProgressError.
func NewProgressError(code, message string, err error) *ProgressError {
	return &ProgressError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Domain-specific error constructors

// ErrQuotaExceeded returns an error when a write is rejected for capacity
// even after the cleanup retry. The message is user-facing: callers surface
// it so the user can be prompted to export their data.
func ErrQuotaExceeded(key string) *ProgressError {
	return &ProgressError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("storage is full; could not save %q. Export your data to avoid losing progress", key),
	}
}

// ErrStorageBlocked returns an error when the storage medium is unavailable.
func ErrStorageBlocked(err error) *ProgressError {
	return &ProgressError{
		Code:    ErrCodeBlocked,
		Message: "storage is not accessible; progress is kept in memory only",
		Err:     err,
	}
}

// ErrStorage wraps an unclassified storage failure.
func ErrStorage(operation string, err error) *ProgressError {
	return &ProgressError{
		Code:    ErrCodeStorage,
		Message: fmt.Sprintf("storage error during %s", operation),
		Err:     err,
	}
}

// ErrCorruptData returns an error when a stored value is not valid JSON or
// fails shape validation. Stores treat this as "absent" and reinitialize,
// but still report it through the error channel.
func ErrCorruptData(key string, err error) *ProgressError {
	return &ProgressError{
		Code:    ErrCodeCorruptData,
		Message: fmt.Sprintf("stored value for %q is corrupt and was reset", key),
		Err:     err,
	}
}

// ErrInvalidImport returns an error for a malformed import payload.
func ErrInvalidImport(reason string, err error) *ProgressError {
	return &ProgressError{
		Code:    ErrCodeInvalidImport,
		Message: fmt.Sprintf("invalid import payload: %s", reason),
		Err:     err,
	}
}

// ErrInvalidInput returns an error for a rejected caller argument.
func ErrInvalidInput(reason string) *ProgressError {
	return &ProgressError{
		Code:    ErrCodeInvalidInput,
		Message: reason,
	}
}

// ErrInvalidGameID returns an error for a game id outside the known roster.
func ErrInvalidGameID(id string) *ProgressError {
	return &ProgressError{
		Code:    ErrCodeInvalidGameID,
		Message: fmt.Sprintf("unknown game id: %s", id),
	}
}

// Classification helpers

// codeOf extracts the ProgressError code from an error chain.
func codeOf(err error) string {
	var perr *ProgressError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ""
}

// IsQuotaExceeded reports whether the error is a quota failure.
func IsQuotaExceeded(err error) bool {
	return codeOf(err) == ErrCodeQuotaExceeded
}

// IsStorageBlocked reports whether the error is a blocked-medium failure.
func IsStorageBlocked(err error) bool {
	return codeOf(err) == ErrCodeBlocked
}

// IsCorruptData reports whether the error is a corrupt-data report.
func IsCorruptData(err error) bool {
	return codeOf(err) == ErrCodeCorruptData
}
