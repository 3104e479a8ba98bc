package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	testData := []struct {
		method string
		status int
		body   string
	}{
		{http.MethodPost, http.StatusCreated, `{"message":"Hello from api/sample/sample.js!","path":"/api/sample/sample","method":"POST"}`},
		{http.MethodGet, http.StatusMethodNotAllowed, `{"error":"Method Not Allowed. Use POST."}`},
		{http.MethodDelete, http.StatusMethodNotAllowed, `{"error":"Method Not Allowed. Use POST."}`},
	}

	for _, record := range testData {
		t.Run(record.method, func(t *testing.T) {
			response := httptest.NewRecorder()
			Handler(response, httptest.NewRequest(record.method, "/sample/sample", nil))

			assert.Equal(t, record.status, response.Code)
			assert.JSONEq(t, record.body, response.Body.String())
		})
	}
}
