// Package bridge holds the process-wide WhatsApp Web client and webhook
// engine shared by the HTTP controllers.
package bridge

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/webhook"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/env"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

const defaultSessionID = "default"

var (
	mu            sync.RWMutex
	client        *pkgWhatsApp.Client
	webhookEngine *webhook.Engine
)

// SessionID names the single session this process serves. It scopes
// persisted auth data, webhooks and issued tokens.
func SessionID() string {
	return env.GetEnvStringOrDefault("WHATSAPP_SESSION_ID", defaultSessionID)
}

func SetClient(c *pkgWhatsApp.Client) {
	mu.Lock()
	client = c
	mu.Unlock()
}

func Client() *pkgWhatsApp.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

func SetWebhookEngine(e *webhook.Engine) {
	mu.Lock()
	webhookEngine = e
	mu.Unlock()
}

func WebhookEngine() *webhook.Engine {
	mu.RLock()
	defer mu.RUnlock()
	return webhookEngine
}

// Context returns the request context, falling back to Background.
func Context(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
