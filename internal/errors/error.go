package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryState      Category = "state"
	CategoryStorage    Category = "storage"
	CategoryNavigation Category = "navigation"
	CategoryConfig     Category = "config"
	CategoryTransport  Category = "transport"
)

// ScopeError is a structured error with a code, an explanation and a hint.
type ScopeError struct {
	// Code is a unique error identifier (e.g., "E100").
	Code string

	// Category is the error type (state, storage, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ScopeError) Error() string {
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
func (e *ScopeError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a ScopeError with the same code, so a
// registered error can serve as a sentinel for errors.Is.
func (e *ScopeError) Is(target error) bool {
	t, ok := target.(*ScopeError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ScopeError) WithSuggestion(s string) *ScopeError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ScopeError) WithDetail(d string) *ScopeError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ScopeError) Wrap(err error) *ScopeError {
	e.Wrapped = err
	return e
}

// New creates a ScopeError from a registered error code.
func New(code string) *ScopeError {
	template, ok := registry[code]
	if !ok {
		return &ScopeError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ScopeError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ScopeError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ScopeError {
	return &ScopeError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ScopeError.
// An error that already is (or wraps) a ScopeError is returned as that ScopeError.
func FromError(err error, code string) *ScopeError {
	if err == nil {
		return nil
	}
	var se *ScopeError
	if errors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first ScopeError in err's chain, or "".
func Code(err error) string {
	var se *ScopeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
