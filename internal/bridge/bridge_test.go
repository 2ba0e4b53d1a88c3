package bridge

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

func TestResponseErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", fmt.Errorf("wrap: %w", pkgWhatsApp.ErrInvalidArgument), http.StatusBadRequest},
		{"not ready", pkgWhatsApp.ErrBridgeNotReady, http.StatusServiceUnavailable},
		{"destroyed", pkgWhatsApp.ErrSessionDestroyed, http.StatusServiceUnavailable},
		{"not found", &pkgWhatsApp.RemoteOperationError{Op: "getChatById", Category: pkgWhatsApp.CategoryNotFound}, http.StatusNotFound},
		{"privacy", &pkgWhatsApp.RemoteOperationError{Op: "getCommonGroups", Category: pkgWhatsApp.CategoryPrivacyRestricted}, http.StatusForbidden},
		{"business", &pkgWhatsApp.RemoteOperationError{Op: "addOrRemoveLabels", Category: pkgWhatsApp.CategoryBusinessOnly}, http.StatusForbidden},
		{"remote unknown", &pkgWhatsApp.RemoteOperationError{Op: "sendMessage", Category: pkgWhatsApp.CategoryUnknown}, http.StatusBadGateway},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return ResponseError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSessionIDFromEnv(t *testing.T) {
	t.Setenv("WHATSAPP_SESSION_ID", "")
	assert.Equal(t, "default", SessionID())

	t.Setenv("WHATSAPP_SESSION_ID", "shop")
	assert.Equal(t, "shop", SessionID())
}

func TestClientHolder(t *testing.T) {
	prev := Client()
	t.Cleanup(func() { SetClient(prev) })

	SetClient(nil)
	assert.Nil(t, Client())

	cl, err := pkgWhatsApp.NewClient(pkgWhatsApp.Options{})
	require.NoError(t, err)
	SetClient(cl)
	assert.Same(t, cl, Client())
}
