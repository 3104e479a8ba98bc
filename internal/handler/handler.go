// Package handler holds the echo handlers the server answers itself, as
// opposed to the handler units it dispatches to.
//
// It is the first layer after the router: the health endpoint lives here, and
// the Handlers container hands the dispatch engine to the router for the
// catch-all route.
package handler
