package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/villarch/internal/config"
	"github.com/deppfellow/villarch/internal/handler"
	"github.com/deppfellow/villarch/internal/loader"
	"github.com/deppfellow/villarch/internal/middleware"
	"github.com/deppfellow/villarch/internal/resolver"
	"github.com/deppfellow/villarch/internal/server"
)

func hello(response http.ResponseWriter, request *http.Request) {
	response.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(response).Encode(map[string]string{
		"message": "Hello from api/sample.js!",
		"path":    "/api/sample",
		"method":  request.Method,
	})
}

func newTestRouter(t *testing.T) (*echo.Echo, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/api/sample/hello.so", []byte("unit"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/srv/api/sample/sample.so", []byte("unit"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Handlers.Dir = "/srv/api"

	logger := zerolog.Nop()
	s, err := server.NewWithFs(cfg, &logger, nil, fs)
	require.NoError(t, err)

	s.Loader = loader.LoaderFunc(func(_ context.Context, location resolver.Location) (http.Handler, error) {
		if location.Route.Action == "hello" {
			return http.HandlerFunc(hello), nil
		}
		return nil, errors.Wrap(loader.ErrNotCallable, location.Path)
	})

	return NewRouter(s, handler.NewHandlers(s)), fs
}

func serve(r *echo.Echo, request *http.Request) *httptest.ResponseRecorder {
	response := httptest.NewRecorder()
	r.ServeHTTP(response, request)
	return response
}

func TestDispatchRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	response := serve(r, httptest.NewRequest(http.MethodGet, "/sample/hello", nil))
	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"message":"Hello from api/sample.js!","path":"/api/sample","method":"GET"}`, response.Body.String())
	assert.NotEmpty(t, response.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", response.Header().Get(echo.HeaderXContentTypeOptions))
}

func TestDispatchErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	testData := []struct {
		name   string
		method string
		target string
		status int
		body   string
	}{
		{"EndpointNotFound", http.MethodGet, "/sample", http.StatusNotFound, `{"error":"Endpoint Not Found"}`},
		{"HandlerNotFound", http.MethodGet, "/sample/missing", http.StatusNotFound, `{"error":"Handler Not Found"}`},
		{"Forbidden", http.MethodGet, "/sample/..%2F..%2Fetc%2Fpasswd", http.StatusForbidden, `{"error":"Forbidden"}`},
		{"MethodNotAllowed", http.MethodPatch, "/sample/hello", http.StatusMethodNotAllowed, `{"error":"Method Not Allowed"}`},
		{"OptionsWithoutOrigin", http.MethodOptions, "/sample/hello", http.StatusMethodNotAllowed, `{"error":"Method Not Allowed"}`},
		{"LoadFailure", http.MethodGet, "/sample/sample", http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
	}

	for _, record := range testData {
		t.Run(record.name, func(t *testing.T) {
			response := serve(r, httptest.NewRequest(record.method, record.target, nil))
			assert.Equal(t, record.status, response.Code)
			assert.JSONEq(t, record.body, response.Body.String())
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r, _ := newTestRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/sample/missing", nil)
	request.Header.Set(middleware.RequestIDHeader, "abc-123")

	response := serve(r, request)
	assert.Equal(t, "abc-123", response.Header().Get(middleware.RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	request := httptest.NewRequest(http.MethodOptions, "/sample/hello", nil)
	request.Header.Set(echo.HeaderOrigin, "https://example.com")
	request.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)

	response := serve(r, request)
	assert.Equal(t, http.StatusNoContent, response.Code)
	assert.Equal(t, "*", response.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestStatus(t *testing.T) {
	r, _ := newTestRouter(t)

	response := serve(r, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, response.Code)

	var body struct {
		Status string `json:"status"`
		Checks struct {
			Handlers struct {
				Status string `json:"status"`
				Routes int    `json:"routes"`
			} `json:"handlers"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))

	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks.Handlers.Status)
	assert.Equal(t, 2, body.Checks.Handlers.Routes)
}

func TestStatusOtherMethods(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			response := serve(r, httptest.NewRequest(method, "/status", nil))
			assert.Equal(t, http.StatusNotFound, response.Code)
			assert.JSONEq(t, `{"error":"Endpoint Not Found"}`, response.Body.String())
		})
	}
}

func TestStatusUnhealthy(t *testing.T) {
	r, fs := newTestRouter(t)
	require.NoError(t, fs.RemoveAll("/srv/api"))

	response := serve(r, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, response.Code)
	assert.Contains(t, response.Body.String(), `"unhealthy"`)
	assert.NotContains(t, response.Body.String(), "/srv/api")
}
