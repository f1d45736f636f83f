// Package errdefs defines the request-scoped error taxonomy shared by every stage of the
// label analysis pipeline. None of these errors is fatal to the process: each one is
// recoverable by the caller correcting its input or retrying the operation.
package errdefs

import (
	"context"
	"errors"
	"net"
	"net/http"
)

var (
	// ErrValidation indicates rejected input (bad filename, extension, oversized upload, empty question).
	// It is always raised before any external call is made.
	ErrValidation = errors.New("validation failed")

	// ErrExtraction indicates the vision model returned no parseable nutrition data
	// or declared the image is not a nutrition label.
	ErrExtraction = errors.New("could not read label")

	// ErrReasoning indicates a scoring engine response that is missing required
	// fields or carries an out-of-range score.
	ErrReasoning = errors.New("invalid scoring response")

	// ErrScoringUnavailable indicates scoring failed even after the retry.
	ErrScoringUnavailable = &Error{Kind: ErrReasoning, Message: "scoring unavailable"}

	// ErrExternalTimeout indicates an external model call exceeded its deadline.
	// The whole operation is safe to retry.
	ErrExternalTimeout = errors.New("external call timed out")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates a collaborator is not configured.
	ErrUnavailable = errors.New("service unavailable")
)

// Error is a classified error. Kind is one of the sentinel errors above.
type Error struct {
	// Kind is the sentinel this error is classified as
	Kind error
	// Op names the operation that failed, e.g. "extractor.Extract"
	Op string
	// Message is a short human readable explanation
	Message string
	// Err is the underlying cause, may be nil
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the Kind of this error, or the same scoring-unavailable marker.
func (e *Error) Is(target error) bool {
	if target == ErrScoringUnavailable {
		return e.Message == ErrScoringUnavailable.Message && e.Kind == ErrReasoning
	}
	return e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a validation error
func Validation(op string, msg string) error {
	return &Error{Kind: ErrValidation, Op: op, Message: msg}
}

// Extraction returns an extraction error
func Extraction(op string, msg string, err error) error {
	return &Error{Kind: ErrExtraction, Op: op, Message: msg, Err: err}
}

// Reasoning returns a reasoning error
func Reasoning(op string, msg string, err error) error {
	return &Error{Kind: ErrReasoning, Op: op, Message: msg, Err: err}
}

// ScoringUnavailable marks a reasoning failure that survived the retry.
func ScoringUnavailable(op string, err error) error {
	return &Error{Kind: ErrReasoning, Op: op, Message: ErrScoringUnavailable.Message, Err: err}
}

// FromContext classifies err returned by an external call. Deadline errors and network
// timeouts, such as an http.Client Timeout surfacing as *url.Error, become
// ErrExternalTimeout; other errors are returned unchanged.
func FromContext(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || isNetTimeout(err) {
		return &Error{Kind: ErrExternalTimeout, Op: op, Err: err}
	}
	return err
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// HTTPStatus maps an error to the status code the HTTP surface responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrExternalTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrReasoning):
		return http.StatusBadGateway
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message shown to end users for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		var e *Error
		if errors.As(err, &e) && e.Message != "" {
			return e.Message
		}
		return ErrValidation.Error()
	case errors.Is(err, ErrExtraction):
		return ErrExtraction.Error()
	case errors.Is(err, ErrExternalTimeout):
		return "the analysis service took too long to respond, please try again"
	case errors.Is(err, ErrReasoning):
		return ErrScoringUnavailable.Message
	case errors.Is(err, ErrUnavailable):
		return ErrUnavailable.Error()
	default:
		return "internal error"
	}
}
