package log

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
		DisableColors:   false,
		ForceColors:     true,
	}
	return l
}

// Logger exposes the process logger so packages outside the HTTP layer can derive entries.
func Logger() *logrus.Logger {
	return logger
}

func Print(c *fiber.Ctx) *logrus.Entry {
	if c == nil {
		return logger.WithFields(logrus.Fields{})
	}

	remoteIP := c.IP()
	if v := c.Locals("remote_ip"); v != nil {
		if ip, ok := v.(string); ok && ip != "" {
			remoteIP = ip
		}
	}
	fields := logrus.Fields{
		"remote_ip": remoteIP,
		"method":    c.Method(),
		"uri":       c.OriginalURL(),
	}
	if v, ok := c.Locals("request_id").(string); ok && v != "" {
		fields["request_id"] = v
	}
	return logger.WithFields(fields)
}

// Session returns an entry tagged for the WhatsApp Web client.
func Session(state string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"component": "whatsapp",
		"state":     state,
	})
}

// Webhook returns an entry tagged for a webhook delivery.
func Webhook(event string, webhookID int64) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"component":  "webhook",
		"event":      event,
		"webhook_id": webhookID,
	})
}

// Operation returns a request entry tagged with the API operation being served.
func Operation(c *fiber.Ctx, op string) *logrus.Entry {
	return Print(c).WithField("operation", op)
}
