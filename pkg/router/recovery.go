package router

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
)

// RecoveryMiddleware answers a panicking handler with a 500 envelope and
// logs the stack. Register it ahead of the routes it should cover.
func RecoveryMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			cause, ok := rec.(error)
			if !ok {
				cause = fmt.Errorf("%v", rec)
			}
			log.Print(c).WithFields(logrus.Fields{
				"request_id": c.Locals("request_id"),
				"stack":      string(debug.Stack()),
			}).WithError(cause).Error("handler panicked")
			err = responseError(c, fiber.StatusInternalServerError, cause.Error())
		}()
		return c.Next()
	}
}
