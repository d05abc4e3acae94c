// Package apperrors defines the error taxonomy shared by the pipeline and
// the HTTP layer. Every failure carries a Kind that the handlers map to a
// status code and a machine-readable error category.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for propagation and HTTP mapping.
type Kind string

const (
	// KindValidation marks a malformed or incomplete request.
	KindValidation Kind = "validation"
	// KindNotFound marks a missing course id.
	KindNotFound Kind = "not_found"
	// KindFetch marks a failure reaching or rendering the source page.
	KindFetch Kind = "fetch"
	// KindGeneration marks a model-service invocation failure.
	KindGeneration Kind = "generation"
	// KindInternal marks everything else.
	KindInternal Kind = "internal"
)

// Error is a kind-tagged error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a kind-tagged error without a cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and context to an underlying error.
// Returns nil if err is nil.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// Wrapf attaches a kind and formatted context to an underlying error.
func Wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an error chain. Untagged errors are
// reported as KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to the status code the API surfaces.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindFetch, KindGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
