package errs

import "strings"

// HTTPError is the error type every server-generated response goes through.
//
// Only Message is serialized. Status selects the HTTP status code and Code is
// a machine-friendly label (e.g. "NOT_FOUND") used in logs.
type HTTPError struct {
	Code    string `json:"-"`
	Message string `json:"error"`
	Status  int    `json:"-"`

	// cause is the underlying failure. It shows up in Error() so logs keep the
	// detail, but it is never serialized.
	cause error
}

// Error makes *HTTPError satisfy the built-in `error` interface.
//
// It returns the client message followed by the cause, if any. Use Message
// when building a client-visible body.
func (e *HTTPError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Is reports whether target is also an *HTTPError.
//
// It does not compare Code/Status. Use errors.As and inspect Status for that.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
		cause:   e.cause,
	}
}

// WithCause returns a copy of this HTTPError carrying err as its cause.
func (e *HTTPError) WithCause(err error) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		cause:   err,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Method Not Allowed" -> "METHOD_NOT_ALLOWED"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
