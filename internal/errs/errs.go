// Package errs defines the error envelope the server writes to clients.
//
// Every error the server produces on its own (as opposed to responses a
// handler unit writes) is rendered as:
//
//	{"error": "<message>"}
//
// with the status code carried alongside. Internal detail never reaches
// the body; it travels as the error's cause and is only logged.
package errs
