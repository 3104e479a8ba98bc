package errs

import (
	"net/http"
)

// Client-visible messages. These are part of the wire contract.
const (
	MessageEndpointNotFound    = "Endpoint Not Found"
	MessageHandlerNotFound     = "Handler Not Found"
	MessageForbidden           = "Forbidden"
	MessageMethodNotAllowed    = "Method Not Allowed"
	MessageInternalServerError = "Internal Server Error"
)

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		// http.StatusText(404) => "Not Found" => "NOT_FOUND"
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewEndpointNotFoundError is the 404 for paths that have no Route Identity.
func NewEndpointNotFoundError() *HTTPError {
	return NewNotFoundError(MessageEndpointNotFound)
}

// NewHandlerNotFoundError is the 404 for routes with no handler unit on disk.
func NewHandlerNotFoundError() *HTTPError {
	return NewNotFoundError(MessageHandlerNotFound)
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError() *HTTPError {
	return newHTTPError(http.StatusForbidden, MessageForbidden)
}

// NewMethodNotAllowedError creates a 405 Method Not Allowed HTTPError.
func NewMethodNotAllowedError() *HTTPError {
	return newHTTPError(http.StatusMethodNotAllowed, MessageMethodNotAllowed)
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is always the generic status text. Attach the real failure with
// WithCause so it gets logged.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, MessageInternalServerError)
}
