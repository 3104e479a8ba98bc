// Handler unit for /sample/hello.
//
// Build with: go build -buildmode=plugin -o api/sample/hello.so ./handlers/sample/hello
package main

import (
	"net/http"

	"github.com/deppfellow/villarch/pkg/respond"
)

// Handler answers any dispatched method.
func Handler(w http.ResponseWriter, r *http.Request) {
	_ = respond.JSON(w, http.StatusOK, map[string]string{
		"message": "Hello from api/sample.js!",
		"path":    "/api/sample",
		"method":  r.Method,
	})
}

func main() {}
