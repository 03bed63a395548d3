// Package domainerrors provides coded errors shared by services, clients and
// transport layers. Codes are stable strings that the HTTP layer maps to
// status codes and that callers branch on with HasCode.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error independently of the layer that produced it.
type Code string

const (
	CodeBadRequest      Code = "bad_request"
	CodeInvalidArgument Code = "invalid_argument"
	CodeValidation      Code = "validation_error"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeNetwork         Code = "network_error"
	CodeServer          Code = "server_error"
	CodeStorage         Code = "storage_error"
	CodeUnavailable     Code = "unavailable"
	CodeTimeout         Code = "timeout"
	CodeInternal        Code = "internal_error"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Coder is implemented by errors that carry their own code without being an
// *Error, such as the remote client's typed transport errors.
type Coder interface {
	ErrorCode() Code
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err. A nil err stays nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the outermost code found in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := e.(type) {
		case *Error:
			return v.Code
		case Coder:
			return v.ErrorCode()
		}
	}
	return CodeInternal
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := e.(type) {
		case *Error:
			if v.Code == code {
				return true
			}
		case Coder:
			if v.ErrorCode() == code {
				return true
			}
		}
	}
	return false
}

// IsClientError reports whether the error stems from caller input rather than
// infrastructure.
func IsClientError(err error) bool {
	switch CodeOf(err) {
	case CodeBadRequest, CodeInvalidArgument, CodeValidation, CodeForbidden, CodeNotFound:
		return true
	default:
		return false
	}
}
