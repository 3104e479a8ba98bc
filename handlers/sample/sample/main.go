// Handler unit for POST /sample/sample.
//
// Build with: go build -buildmode=plugin -o api/sample/sample.so ./handlers/sample/sample
package main

import (
	"net/http"

	"github.com/deppfellow/villarch/pkg/respond"
)

// Handler only accepts POST and answers every other method with its own 405.
var Handler = func(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		_ = respond.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed. Use POST.")
		return
	}

	_ = respond.JSON(w, http.StatusCreated, map[string]string{
		"message": "Hello from api/sample/sample.js!",
		"path":    "/api/sample/sample",
		"method":  r.Method,
	})
}

func main() {}
