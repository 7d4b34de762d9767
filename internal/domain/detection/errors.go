package detection

import (
	"errors"
	"fmt"
)

var (
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrBadRequest       = errors.New("bad request")
	ErrPayloadTooLarge  = errors.New("payload too large")
	// ErrConfiguration means the model credential is missing; no call is attempted.
	ErrConfiguration = errors.New("model credential is not configured")
	// ErrUpstreamParse is recovered locally and never returned to a caller.
	ErrUpstreamParse = errors.New("model reply is not valid json")
	ErrUpstreamCall  = errors.New("model call failed")
	ErrPersistence   = errors.New("history persistence failed")
)

// PayloadTooLargeError carries the measured content size.
type PayloadTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("content is %d bytes, limit is %d", e.Size, e.Limit)
}

func (e *PayloadTooLargeError) Unwrap() error { return ErrPayloadTooLarge }

// BadRequest wraps ErrBadRequest with a reason.
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}
