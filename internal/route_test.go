package internal

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/auth"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	t.Setenv("WHATSAPP_SESSION_ID", "default")

	prevJWT, prevAdmin := auth.JWTSecretKey, auth.AdminSecretKey
	auth.JWTSecretKey = "0123456789abcdef0123456789abcdef"
	auth.AdminSecretKey = "admin"
	prevClient, prevEngine := bridge.Client(), bridge.WebhookEngine()
	t.Cleanup(func() {
		auth.JWTSecretKey, auth.AdminSecretKey = prevJWT, prevAdmin
		bridge.SetClient(prevClient)
		bridge.SetWebhookEngine(prevEngine)
	})
	bridge.SetClient(nil)
	bridge.SetWebhookEngine(nil)

	app := fiber.New(fiber.Config{ErrorHandler: router.HttpErrorHandler, UnescapePath: true})
	Routes(app)

	token, err := auth.GenerateSessionToken("default")
	require.NoError(t, err)
	return app, token
}

func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, router.Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var envelope router.Response
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp, envelope
}

func TestIndex(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Status)
}

func TestIssueToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := do(t, app, http.MethodPost, "/auth/token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	req.Header.Set("X-Admin-Secret", "admin")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var envelope struct {
		Data struct {
			SessionID string `json:"session_id"`
			Token     string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "default", envelope.Data.SessionID)

	claims, err := auth.ValidateSessionToken(envelope.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "default", claims.SessionID)

	req = httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(`{"session_id":"other"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Secret", "admin")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{"/session/status", "/chats", "/contacts", "/labels", "/webhooks"} {
		resp, _ := do(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestRoutesWithoutClient(t *testing.T) {
	app, token := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/session/status", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, body.Status)

	resp, _ = do(t, app, http.MethodGet, "/webhooks", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRoutesBeforeReady(t *testing.T) {
	app, token := newTestApp(t)
	cl, err := pkgWhatsApp.NewClient(pkgWhatsApp.Options{})
	require.NoError(t, err)
	bridge.SetClient(cl)

	resp, body := do(t, app, http.MethodGet, "/session/status", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, string(pkgWhatsApp.SessionIdle), data["state"])
	assert.NotContains(t, data, "wa_state")

	tests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/chats", nil},
		{http.MethodGet, "/chats/6281234567890@c.us", nil},
		{http.MethodPost, "/chats/6281234567890@c.us/archive", nil},
		{http.MethodGet, "/contacts/blocked", nil},
		{http.MethodGet, "/groups/120363000000@g.us", nil},
		{http.MethodGet, "/session/screenshot", nil},
		{http.MethodGet, "/session/info", nil},
		{http.MethodPost, "/messages", map[string]interface{}{"chat_id": "6281234567890", "text": "hi"}},
	}
	for _, tt := range tests {
		resp, _ := do(t, app, tt.method, tt.path, token, tt.body)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, tt.path)
	}

	resp, _ = do(t, app, http.MethodGet, "/session/qr", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, app, http.MethodGet, "/session/code", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestValidation(t *testing.T) {
	app, token := newTestApp(t)
	cl, err := pkgWhatsApp.NewClient(pkgWhatsApp.Options{})
	require.NoError(t, err)
	bridge.SetClient(cl)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"send without chat", http.MethodPost, "/messages", map[string]interface{}{"text": "hi"}},
		{"send without content", http.MethodPost, "/messages", map[string]interface{}{"chat_id": "6281234567890"}},
		{"search without query", http.MethodGet, "/messages/search", nil},
		{"labels without chats", http.MethodPost, "/labels/apply", map[string]interface{}{"label_ids": []string{"1"}}},
		{"picture without media", http.MethodPost, "/profile/picture", map[string]interface{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, tt.method, tt.path, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.False(t, body.Status)
		})
	}
}

func TestAdminHealth(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/health", nil)
	req.Header.Set("X-Admin-Secret", "admin")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body router.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "uninitialized", data["state"])
	assert.Equal(t, false, data["webhooks"])
}
