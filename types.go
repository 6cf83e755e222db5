package unicatalog

import "github.com/cockroachdb/errors"

// ErrorCode represents specific error codes for catalogue operations.
type ErrorCode int

const (
	// ErrCodeNetwork is returned when the transport fails or the server
	// answers with a non-2xx status.
	ErrCodeNetwork ErrorCode = iota + 1000

	// ErrCodeMalformedResponse is returned when a 2xx body does not have the
	// expected shape.
	ErrCodeMalformedResponse

	// ErrCodeNotFound is returned when a university code is unknown.
	ErrCodeNotFound

	// ErrCodeCanceled is returned when an operation is canceled.
	ErrCodeCanceled

	// ErrCodeBackendUnavailable is returned when the backend is misconfigured
	// or its circuit breaker is open.
	ErrCodeBackendUnavailable
)

// String returns the human-readable string representation of the error code.
// This implements the fmt.Stringer interface.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeNetwork:
		return "network error"
	case ErrCodeMalformedResponse:
		return "malformed response"
	case ErrCodeNotFound:
		return "not found"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

// Errors returned by Catalog implementations. Concrete failures are marked
// with one of these so callers can test them with errors.Is.
var (
	// ErrNetwork is returned on transport failures and non-2xx responses.
	ErrNetwork = newErrorWithCode(ErrCodeNetwork, "unicatalog: network error")

	// ErrMalformedResponse is returned when a response body fails the shape check.
	ErrMalformedResponse = newErrorWithCode(ErrCodeMalformedResponse, "unicatalog: malformed response")

	// ErrNotFound is returned when a detail fetch names an unknown university.
	ErrNotFound = newErrorWithCode(ErrCodeNotFound, "unicatalog: university not found")

	// ErrCanceled is returned when the caller's context is done.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "unicatalog: operation canceled")

	// ErrBackendUnavailable is returned when the backend cannot be reached at all.
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "unicatalog: backend unavailable")
)

// Code reports the ErrorCode of err, or 0 when err carries none of the
// package sentinels.
func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrCanceled):
		return ErrCodeCanceled
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrMalformedResponse):
		return ErrCodeMalformedResponse
	case errors.Is(err, ErrBackendUnavailable):
		return ErrCodeBackendUnavailable
	case errors.Is(err, ErrNetwork):
		return ErrCodeNetwork
	default:
		return 0
	}
}
