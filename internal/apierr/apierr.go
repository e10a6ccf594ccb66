// Package apierr classifies failures of remote operations so callers can route
// field errors into form state and everything else into a banner.
package apierr

import (
	"errors"
	"strings"
)

// Kind is the outcome category of a failed operation.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindGlobal       Kind = "global"
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
)

// FallbackMessage is shown when the server gave no usable response.
const FallbackMessage = "Something went wrong. Please check your connection."

// FieldError is a validation message attached to one input field.
// Path uses dotted notation for nested fields, e.g. "address.city".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error wraps a failed remote or validation outcome with a stable kind.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []FieldError
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Banner()
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Banner returns the single message to show above a form.
func (e *Error) Banner() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Message)
		}
		return strings.Join(msgs, ", ")
	}
	if e.Kind == KindNetwork {
		return FallbackMessage
	}
	return string(e.Kind)
}

// FieldMap indexes field errors by path. The first message for a path wins.
func (e *Error) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := m[f.Path]; !ok {
			m[f.Path] = f.Message
		}
	}
	return m
}

// Validation builds a field-level error.
func Validation(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

// Global builds a business error not tied to a field.
func Global(status int, msg string) *Error {
	return &Error{Kind: KindGlobal, Status: status, Message: msg}
}

// Network builds an error for a request that produced no usable response.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

// New creates an error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// HasKind reports whether err is an *Error of the given kind.
func HasKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// As extracts an *Error from err. Errors of any other type are classified as
// network failures so callers always get a discriminator.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Network(err)
}
