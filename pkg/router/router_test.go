package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

func TestParseBodyLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 8 * 1024 * 1024},
		{"512", 512},
		{"64k", 64 * 1024},
		{" 16M ", 16 * 1024 * 1024},
		{"1G", 1024 * 1024 * 1024},
		{"2mb", 2 * 1024 * 1024},
		{"100B", 100},
		{"B", 8 * 1024 * 1024},
		{"abc", 8 * 1024 * 1024},
		{"-5M", 8 * 1024 * 1024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseBodyLimit(tt.in), tt.in)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	for in, want := range map[string]string{
		"":          "",
		"/":         "",
		" api ":     "/api",
		"/api/":     "/api",
		"//v1/wa//": "/v1/wa",
	} {
		assert.Equal(t, want, normalizeBaseURL(in), in)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_BASE_URL", "bridge/")
	t.Setenv("HTTP_BODY_LIMIT_SIZE", "16M")
	t.Setenv("HTTP_GZIP_LEVEL", "2")

	cfg := LoadConfig()
	assert.Equal(t, "/bridge", cfg.BaseURL)
	assert.Equal(t, 16<<20, cfg.BodyLimit)
	assert.Equal(t, 2, cfg.GZipLevel)
	assert.Equal(t, "*", cfg.CORSOrigin)
}

func TestHttpRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(HttpRequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("request_id").(string))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)
}

func TestRecoveryMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RecoveryMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { panic("kaboom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Status)
	assert.Equal(t, "kaboom", body.Message)
}

func TestRecoveryMiddlewareErrorPanic(t *testing.T) {
	app := fiber.New()
	app.Use(RecoveryMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { panic(errors.New("nil page")) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "nil page", body.Message)
	assert.Equal(t, "nil page", body.Error)
}

func TestHttpCacheSkipsAuthenticatedRequests(t *testing.T) {
	hits := 0
	app := fiber.New()
	app.Use(HttpCacheInMemory(60))
	app.Get("/", func(c *fiber.Ctx) error {
		hits++
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, hits)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer x")
		_, err := app.Test(req)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, hits)
}

func TestResponseErrorEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return ResponseServiceUnavailable(c, "") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusServiceUnavailable, body.Code)
	assert.Equal(t, "Service Unavailable", body.Message)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fiber.NewError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		{fmt.Errorf("sendMessage: %w", pkgWhatsApp.ErrInvalidArgument), http.StatusBadRequest},
		{pkgWhatsApp.ErrBridgeNotReady, http.StatusServiceUnavailable},
		{&pkgWhatsApp.RemoteOperationError{Op: "getChatById", Category: pkgWhatsApp.CategoryNotFound}, http.StatusNotFound},
		{&pkgWhatsApp.RemoteOperationError{Op: "setStatus", Category: pkgWhatsApp.CategoryUnauthorized}, http.StatusForbidden},
		{&pkgWhatsApp.RemoteOperationError{Op: "sendMessage"}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestHttpErrorHandlerRendersReturnedErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: HttpErrorHandler})
	app.Get("/chat", func(c *fiber.Ctx) error {
		return &pkgWhatsApp.RemoteOperationError{Op: "getChatById", Category: pkgWhatsApp.CategoryNotFound}
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/chat", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Status)
	assert.Equal(t, http.StatusNotFound, body.Code)
	assert.Contains(t, body.Message, "getChatById")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
