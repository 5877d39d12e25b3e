// Package errors carries the editor's failure taxonomy.
//
// Every failure that crosses a package boundary is an [*Error] with a
// [Code]. The front-ends switch on the code: the HTTP API maps it to a
// status, the terminal editor decides whether to show it, and metrics label
// failures by it.
//
// Gesture failures (INVALID_CONNECTION, MISSING_ENDPOINT) are recovered by
// the editor and leave no trace on the canvas. TEMPLATE_FETCH_FAILED and
// IMPORT_PARSE_FAILED abort only the operation in progress.
// IMPORT_INCOMPLETE is returned alongside a partially restored flow.
//
//	err := errors.Wrap(errors.ErrCodeTemplateFetch, cause, "load template %s", typ)
//	if errors.Is(err, errors.ErrCodeTemplateFetch) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable failure class.
type Code string

const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidBlockType  Code = "INVALID_BLOCK_TYPE"
	ErrCodeInvalidConnection Code = "INVALID_CONNECTION"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeUnknownBlock    Code = "UNKNOWN_BLOCK"
	ErrCodeMissingEndpoint Code = "MISSING_ENDPOINT"

	ErrCodeTemplateFetch   Code = "TEMPLATE_FETCH_FAILED"
	ErrCodeInvalidTemplate Code = "INVALID_TEMPLATE"

	ErrCodeImportParse      Code = "IMPORT_PARSE_FAILED"
	ErrCodeImportIncomplete Code = "IMPORT_INCOMPLETE"

	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded failure. Cause may be nil.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost [*Error] in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost [*Error] in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	if e := asError(err); e != nil {
		return e.Code
	}
	return ""
}

// UserMessage returns err's message without the code prefix or cause.
func UserMessage(err error) string {
	if e := asError(err); e != nil {
		return e.Message
	}
	return err.Error()
}

func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
