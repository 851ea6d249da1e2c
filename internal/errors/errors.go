package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode is a stable identifier for host-facing failures
type ErrorCode string

const (
	// InvalidInput indicates a malformed request from a host
	InvalidInput ErrorCode = "INVALID_INPUT"
	// StorageUnavailable indicates the key-value store could not be opened or written
	StorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	// DictionaryUnavailable indicates the dictionary source could not be read
	DictionaryUnavailable ErrorCode = "DICTIONARY_UNAVAILABLE"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// UnsupportedFormat indicates an unknown export/import format
	UnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error carries a stable code, a human message and an optional cause
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Hint    string      `json:"hint,omitempty"`
	cause   error
}

// New creates a coded error
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Hint:    hints[code],
		cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails attaches structured details
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return InternalError
}

var hints = map[ErrorCode]string{
	StorageUnavailable:    "check storage.path permissions or switch storage.backend to memory",
	DictionaryUnavailable: "check dictionary.path or dictionary.url",
	ConfigInvalid:         "run 'wordsmith config show' to inspect the effective configuration",
	UnsupportedFormat:     "use one of: json, yaml, toml",
}
