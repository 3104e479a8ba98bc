// Package respond writes JSON bodies from handler units.
//
// Handler units receive a plain http.ResponseWriter; these helpers produce the
// same {"error": "..."} envelope the server uses for its own failures, so a
// unit rejecting a request looks like the server rejecting it.
package respond

import (
	"net/http"

	"github.com/goccy/go-json"
)

const contentType = "application/json"

// ErrorBody is the error envelope.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v as the JSON body with status.
//
// v is encoded before anything is written, so an encoding failure leaves the
// response untouched and is returned to the caller.
func JSON(w http.ResponseWriter, status int, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)

	_, err = w.Write(body)
	return err
}

// Error writes the error envelope with status and message.
func Error(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, ErrorBody{Error: message})
}

// MethodNotAllowed rejects the request unless its method is one of allowed.
//
// It reports whether the request was rejected; the Allow header lists allowed.
//
//	if respond.MethodNotAllowed(w, r, http.MethodPost) {
//		return
//	}
func MethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	for _, method := range allowed {
		if r.Method == method {
			return false
		}
	}

	for _, method := range allowed {
		w.Header().Add("Allow", method)
	}

	_ = Error(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	return true
}
