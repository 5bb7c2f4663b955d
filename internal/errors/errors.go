package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of the
// innermost coded error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

type coded interface {
	ErrorCode() string
}

// GetCode returns the code of the first coded error in the chain,
// otherwise CodeInternalError.
func GetCode(err error) string {
	for err != nil {
		switch e := err.(type) {
		case *AppError:
			if e.Code != "" && e.Code != CodeInternalError {
				return e.Code
			}
		case coded:
			return e.ErrorCode()
		}
		err = stderrors.Unwrap(err)
	}
	return CodeInternalError
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeNotFound       = "NOT_FOUND"
	CodeParseError     = "PARSE_ERROR"
	CodeUnknownColumn  = "UNKNOWN_COLUMN"
	CodeTypeError      = "TYPE_ERROR"
	CodeEmptyColumn    = "EMPTY_COLUMN"
	CodeMissingField   = "MISSING_FIELD"
	CodeDeliveryError  = "DELIVERY_ERROR"
	CodeExternalFailed = "EXTERNAL_SERVICE_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// ParseError reports an upload that could not be read as a table.
func ParseError(cause error) *AppError {
	return &AppError{Code: CodeParseError, Message: "failed to parse dataset", Cause: cause}
}

// UnknownColumn reports a selection naming a column the dataset does not have.
func UnknownColumn(column string) *AppError {
	return New(CodeUnknownColumn, fmt.Sprintf("unknown column %q", column))
}

// TypeError reports a numeric-only operation applied to a text column.
func TypeError(column, operation string) *AppError {
	return New(CodeTypeError, fmt.Sprintf("%s requires a numeric column, %q is not numeric", operation, column))
}

// EmptyColumn reports a column with no non-missing values left.
func EmptyColumn(column string) *AppError {
	return New(CodeEmptyColumn, fmt.Sprintf("column %q has no non-missing values", column))
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalFailed,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}

// MissingFieldError is returned when a template placeholder names a field
// the row does not have.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("template field %q not found in row", e.Field)
}

func (e *MissingFieldError) ErrorCode() string { return CodeMissingField }

// DeliveryError is returned when the send endpoint did not accept a message.
// StatusCode is zero when no response was received.
type DeliveryError struct {
	Recipient  string
	StatusCode int
	Cause      error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to send email to %s: status %d: %v", e.Recipient, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("failed to send email to %s: %v", e.Recipient, e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

func (e *DeliveryError) ErrorCode() string { return CodeDeliveryError }
