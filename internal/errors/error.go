package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/mvu/pkg/protocol"
	"github.com/vango-dev/mvu/pkg/runtime"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
	CategoryPublish  Category = "publish"
)

// Error is a structured error with a code, an explanation and a fix hint.
type Error struct {
	// Code is a unique error identifier (e.g., "M001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error under code. An *Error is returned as is.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// FromRuntime maps a runtime or protocol failure to its coded error.
// Errors it does not recognize become M099.
func FromRuntime(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	var pe *protocol.ErrorMessage
	if stderrors.As(err, &pe) {
		return New("M040").WithDetail(pe.Error()).Wrap(err)
	}

	code := "M099"
	switch {
	case stderrors.Is(err, runtime.ErrUnknownCommand):
		code = "M001"
	case stderrors.Is(err, runtime.ErrExternalPrimitive):
		code = "M002"
	case stderrors.Is(err, runtime.ErrDuplicateHandlerBinding):
		code = "M003"
	case stderrors.Is(err, runtime.ErrMalformedTree):
		code = "M004"
	case stderrors.Is(err, runtime.ErrPanic):
		code = "M005"
	case stderrors.Is(err, runtime.ErrCycleInFlight):
		code = "M006"
	case stderrors.Is(err, runtime.ErrNotMounted):
		code = "M007"
	case stderrors.Is(err, runtime.ErrCommandType):
		code = "M008"
	}
	return New(code).Wrap(err)
}
