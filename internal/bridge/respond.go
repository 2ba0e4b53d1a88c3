package bridge

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
)

// ResponseError writes err using the status code that matches its kind.
func ResponseError(c *fiber.Ctx, err error) error {
	return router.HttpErrorHandler(c, err)
}

// ResponseNotInitialized answers requests that arrive before Startup has
// created the client.
func ResponseNotInitialized(c *fiber.Ctx) error {
	return router.ResponseServiceUnavailable(c, "WhatsApp client not initialized")
}
