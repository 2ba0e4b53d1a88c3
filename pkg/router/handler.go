package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

// StatusFor picks the HTTP status reported for err. Fiber errors keep their
// own code; client errors are classified by sentinel and remote category.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	var remote *pkgWhatsApp.RemoteOperationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, pkgWhatsApp.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, pkgWhatsApp.ErrBridgeNotReady), errors.Is(err, pkgWhatsApp.ErrSessionDestroyed):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &remote):
		switch remote.Category {
		case pkgWhatsApp.CategoryNotFound:
			return fiber.StatusNotFound
		case pkgWhatsApp.CategoryPrivacyRestricted, pkgWhatsApp.CategoryUnauthorized, pkgWhatsApp.CategoryBusinessOnly:
			return fiber.StatusForbidden
		}
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// HttpErrorHandler renders any error returned by a handler as the standard
// envelope, so controllers can hand client errors straight back to fiber.
func HttpErrorHandler(c *fiber.Ctx, err error) error {
	message := err.Error()
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		message = fiberErr.Message
	}
	return responseError(c, StatusFor(err), message)
}
