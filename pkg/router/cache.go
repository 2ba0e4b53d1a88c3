package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
)

// HttpCacheInMemory caches anonymous GET responses such as the index and docs.
// Authenticated requests always reach the live session.
func HttpCacheInMemory(ttl int) fiber.Handler {
	if ttl <= 0 {
		ttl = 5
	}
	return cache.New(cache.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet ||
				c.Get(fiber.HeaderAuthorization) != "" ||
				c.Get("X-Admin-Secret") != ""
		},
		Expiration: time.Duration(ttl) * time.Second,
	})
}
