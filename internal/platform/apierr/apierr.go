package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
)

// Error is an error already resolved to an HTTP status and public code.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusFor maps a domain error code to its HTTP status.
func StatusFor(code aggregates.ErrorCode) int {
	switch code {
	case aggregates.CodeValidation, aggregates.CodeDuplicateIdentity:
		return http.StatusBadRequest
	case aggregates.CodeUnauthenticated:
		return http.StatusUnauthorized
	case aggregates.CodeForbidden:
		return http.StatusForbidden
	case aggregates.CodeNotFound:
		return http.StatusNotFound
	case aggregates.CodeConflict:
		return http.StatusConflict
	case aggregates.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError resolves any error to an *Error. Errors without a domain code are
// internal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	code := aggregates.CodeOf(err)
	if code == "" {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			code = aggregates.CodeRetryable
		default:
			code = aggregates.CodeInternal
		}
	}
	return New(StatusFor(code), string(code), err)
}

// PublicMessage is the message safe to show a caller. Internal failures never
// expose their cause.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	if e.Status >= http.StatusInternalServerError && e.Status != http.StatusServiceUnavailable {
		return "internal error"
	}
	if msg := aggregates.MessageOf(e.Err); msg != "" {
		return msg
	}
	if e.Status == http.StatusServiceUnavailable {
		return "temporarily unavailable, retry"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}
