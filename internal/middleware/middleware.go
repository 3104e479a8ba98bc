// Package middleware stores the middleware wrapped around every request.
//
// These intercept requests to handle cross-cutting concerns
// such as request ids, request logging, CORS, tracing,
// panic recovery and the final translation of errors
// into JSON responses.
package middleware
