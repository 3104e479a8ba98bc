package errs

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	testData := []struct {
		err     *HTTPError
		status  int
		code    string
		message string
	}{
		{NewEndpointNotFoundError(), http.StatusNotFound, "NOT_FOUND", "Endpoint Not Found"},
		{NewHandlerNotFoundError(), http.StatusNotFound, "NOT_FOUND", "Handler Not Found"},
		{NewForbiddenError(), http.StatusForbidden, "FORBIDDEN", "Forbidden"},
		{NewMethodNotAllowedError(), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method Not Allowed"},
		{NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error"},
	}

	for _, record := range testData {
		t.Run(record.message, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(record.status, record.err.Status)
			assert.Equal(record.code, record.err.Code)
			assert.Equal(record.message, record.err.Message)
		})
	}
}

func TestEnvelopeHidesCause(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		cause = errors.New("open /srv/api/users/list.so: no such file")
		err   = NewInternalServerError().WithCause(cause)
	)

	body, marshalErr := json.Marshal(err)
	require.NoError(marshalErr)
	assert.JSONEq(`{"error":"Internal Server Error"}`, string(body))

	assert.Contains(err.Error(), "no such file")
	assert.ErrorIs(err, cause)
}

func TestIsMatchesAnyHTTPError(t *testing.T) {
	var (
		assert = assert.New(t)
		target *HTTPError
	)

	wrapped := NewForbiddenError().WithCause(errors.New("escape"))
	assert.True(errors.Is(wrapped, NewEndpointNotFoundError()))
	assert.True(errors.As(wrapped, &target))
	assert.Equal(http.StatusForbidden, target.Status)
}

func TestWithMessage(t *testing.T) {
	assert := assert.New(t)

	original := NewNotFoundError("a")
	copied := original.WithMessage("b")

	assert.Equal("a", original.Message)
	assert.Equal("b", copied.Message)
	assert.Equal(original.Status, copied.Status)
}
