package midjourney

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	// ErrInvalidIndex is returned when a variation index is outside 0..4.
	ErrInvalidIndex = errors.New("midjourney: variation index out of range")

	// ErrEmptyPrompt is returned by Imagine for a blank prompt.
	ErrEmptyPrompt = errors.New("midjourney: empty prompt")

	// ErrNotFinished is returned when a variation is requested from an
	// outcome that is not a finished job.
	ErrNotFinished = errors.New("midjourney: outcome is not finished")

	// ErrDuplicateToken is returned when a correlation token is registered
	// twice.
	ErrDuplicateToken = errors.New("midjourney: correlation token already registered")

	// ErrStreamConsumed is returned when an outcome sequence is iterated a
	// second time.
	ErrStreamConsumed = errors.New("midjourney: outcome stream already consumed")

	// ErrNotConnected is returned when a command is issued while the gateway
	// session is not live.
	ErrNotConnected = errors.New("midjourney: gateway not connected")

	// ErrClosed is returned after the client has been closed.
	ErrClosed = errors.New("midjourney: client closed")
)

// Error is a rejected command submission. StatusCode is the HTTP status
// returned by the interactions endpoint; Code and Message come from the
// JSON error body when present.
type Error struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("midjourney: interaction rejected (status=%d)", e.StatusCode)
	}
	return fmt.Sprintf("midjourney: interaction rejected: %s (status=%d, code=%d)",
		e.Message, e.StatusCode, e.Code)
}

// IsAuth reports whether the credential was refused.
func (e *Error) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimit reports whether the submission was rate limited.
func (e *Error) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsServerError reports whether the platform failed server-side.
func (e *Error) IsServerError() bool {
	return e.StatusCode >= 500
}

// AsError extracts *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// TransportError is a connect or send failure on the gateway or on the
// submission channel.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("midjourney: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
