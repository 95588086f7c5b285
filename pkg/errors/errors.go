package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Manifest and validation errors
	ErrManifestNotFound  ErrorCode = "MANIFEST_NOT_FOUND"
	ErrManifestInvalid   ErrorCode = "MANIFEST_INVALID"
	ErrNameInvalid       ErrorCode = "NAME_INVALID"
	ErrSourceInvalid     ErrorCode = "SOURCE_INVALID"
	ErrRevisionInvalid   ErrorCode = "REVISION_INVALID"
	ErrUnsafeArgument    ErrorCode = "UNSAFE_ARGUMENT"
	ErrDuplicatePlugin   ErrorCode = "DUPLICATE_PLUGIN"
	ErrDependencyMissing ErrorCode = "DEPENDENCY_MISSING"
	ErrDependencyCycle   ErrorCode = "DEPENDENCY_CYCLE"
	ErrLockVersion       ErrorCode = "LOCK_VERSION"
	ErrConfigLoad        ErrorCode = "CONFIG_LOAD"

	// Git errors
	ErrGitUnavailable ErrorCode = "GIT_UNAVAILABLE"
	ErrGitClone       ErrorCode = "GIT_CLONE"
	ErrGitCheckout    ErrorCode = "GIT_CHECKOUT"
	ErrGitRevParse    ErrorCode = "GIT_REV_PARSE"
	ErrGitFetch       ErrorCode = "GIT_FETCH"

	// Filesystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrFileDelete ErrorCode = "FILE_DELETE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// validationCodes are errors in the declared input itself. They are raised
// before any git or filesystem work starts and abort the whole run.
var validationCodes = map[ErrorCode]bool{
	ErrManifestNotFound:  true,
	ErrManifestInvalid:   true,
	ErrNameInvalid:       true,
	ErrSourceInvalid:     true,
	ErrRevisionInvalid:   true,
	ErrUnsafeArgument:    true,
	ErrDuplicatePlugin:   true,
	ErrDependencyMissing: true,
	ErrDependencyCycle:   true,
	ErrLockVersion:       true,
	ErrConfigLoad:        true,
}

// vcsCodes are failures of an underlying git operation. They are confined to
// the plugin being reconciled and never abort the run.
var vcsCodes = map[ErrorCode]bool{
	ErrGitUnavailable: true,
	ErrGitClone:       true,
	ErrGitCheckout:    true,
	ErrGitRevParse:    true,
	ErrGitFetch:       true,
}

// ioCodes are filesystem failures, with the same propagation policy as vcsCodes.
var ioCodes = map[ErrorCode]bool{
	ErrFileAccess: true,
	ErrFileWrite:  true,
	ErrFileDelete: true,
	ErrDirCreate:  true,
}

// DoplugError represents a structured error with code and details
type DoplugError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DoplugError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DoplugError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DoplugError) Is(target error) bool {
	var targetErr *DoplugError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DoplugError with the given code and message
func New(code ErrorCode, message string) *DoplugError {
	return &DoplugError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DoplugError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DoplugError {
	return &DoplugError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DoplugError
func Wrap(err error, code ErrorCode, message string) *DoplugError {
	if err == nil {
		return nil
	}
	return &DoplugError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DoplugError {
	if err == nil {
		return nil
	}
	return &DoplugError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DoplugError) WithDetail(key string, value interface{}) *DoplugError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var plugErr *DoplugError
	if errors.As(err, &plugErr) {
		return plugErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DoplugError
func GetErrorCode(err error) ErrorCode {
	var plugErr *DoplugError
	if errors.As(err, &plugErr) {
		return plugErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DoplugError
func GetErrorDetails(err error) map[string]interface{} {
	var plugErr *DoplugError
	if errors.As(err, &plugErr) {
		return plugErr.Details
	}
	return nil
}

// IsValidation reports whether err is a validation error: bad declared input,
// detected before any plugin work and fatal to the run.
func IsValidation(err error) bool {
	return validationCodes[GetErrorCode(err)]
}

// IsVcs reports whether err is a git operation failure, confined to one plugin.
func IsVcs(err error) bool {
	return vcsCodes[GetErrorCode(err)]
}

// IsIo reports whether err is a filesystem failure, confined to one plugin.
func IsIo(err error) bool {
	return ioCodes[GetErrorCode(err)]
}
