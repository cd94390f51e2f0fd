// Package errors defines the coded errors preslug reports from schema
// loading through rendering.
//
// Every failure a user can act on carries a Code. Codes fall into classes
// that decide how each surface reacts:
//
//	ClassSchema       SCHEMA_INVALID                  bad form definition, fatal at startup
//	ClassConsistency  FIELD_NOT_FOUND                 page values disagree with the schema
//	ClassData         VALUE_TOO_LONG, NOT_NUMERIC,    roster content the form cannot hold
//	                  MALFORMED_ROW, TIME_PARSE,
//	                  INVALID_SORT_KEY
//	ClassRequest      ROOM_NOT_FOUND, INVALID_EVENT,  what the caller asked for
//	                  INVALID_INPUT
//	ClassInternal     INTERNAL_ERROR and uncoded errors
//
// The HTTP server answers data and request errors with 4xx and everything
// else with 500; the CLI maps classes to exit codes.
//
//	err := errors.Wrap(errors.ErrCodeTimeParse, cause, "row %d: speech time %q", n, raw)
//	if errors.Is(err, errors.ErrCodeTimeParse) { ... }
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code, stable across releases.
type Code string

const (
	ErrCodeSchemaInvalid Code = "SCHEMA_INVALID"
	ErrCodeFieldNotFound Code = "FIELD_NOT_FOUND"

	ErrCodeValueTooLong   Code = "VALUE_TOO_LONG"
	ErrCodeNotNumeric     Code = "NOT_NUMERIC"
	ErrCodeMalformedRow   Code = "MALFORMED_ROW"
	ErrCodeTimeParse      Code = "TIME_PARSE"
	ErrCodeInvalidSortKey Code = "INVALID_SORT_KEY"

	ErrCodeRoomNotFound Code = "ROOM_NOT_FOUND"
	ErrCodeInvalidEvent Code = "INVALID_EVENT"
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Class groups codes by who has to fix the problem.
type Class int

const (
	ClassInternal Class = iota
	ClassSchema
	ClassConsistency
	ClassData
	ClassRequest
)

type codeInfo struct {
	class  Class
	status int
}

var codes = map[Code]codeInfo{
	ErrCodeSchemaInvalid:  {ClassSchema, http.StatusInternalServerError},
	ErrCodeFieldNotFound:  {ClassConsistency, http.StatusInternalServerError},
	ErrCodeValueTooLong:   {ClassData, http.StatusBadRequest},
	ErrCodeNotNumeric:     {ClassData, http.StatusBadRequest},
	ErrCodeMalformedRow:   {ClassData, http.StatusBadRequest},
	ErrCodeTimeParse:      {ClassData, http.StatusBadRequest},
	ErrCodeInvalidSortKey: {ClassData, http.StatusBadRequest},
	ErrCodeRoomNotFound:   {ClassRequest, http.StatusNotFound},
	ErrCodeInvalidEvent:   {ClassRequest, http.StatusNotFound},
	ErrCodeInvalidInput:   {ClassRequest, http.StatusBadRequest},
	ErrCodeInternal:       {ClassInternal, http.StatusInternalServerError},
}

// Class returns the class of c. Unknown codes are internal.
func (c Code) Class() Class {
	return codes[c].class
}

// Error is a coded error. Message is written for the person who supplied
// the roster or form definition; Cause keeps the low-level detail.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and a message to cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage joins the messages of the coded errors in err's chain and
// drops uncoded causes, which rarely mean anything to a user.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil && GetCode(e.Cause) != "" {
		return e.Message + ": " + UserMessage(e.Cause)
	}
	return e.Message
}

// HTTPStatus is the status the server answers err with.
func HTTPStatus(err error) int {
	if info, ok := codes[GetCode(err)]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// ExitCode is the process exit status for err: 0 for nil, 2 for request
// errors (bad flags or arguments), 3 for roster data errors, 4 for a bad form
// definition and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err).Class() {
	case ClassRequest:
		return 2
	case ClassData:
		return 3
	case ClassSchema:
		return 4
	}
	return 1
}
