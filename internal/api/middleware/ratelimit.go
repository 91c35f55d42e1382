package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ChatRateLimit returns a per-IP rate limiter for the completion endpoints.
// A non-positive max disables limiting.
func ChatRateLimit(max int, expiration time.Duration) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	if expiration <= 0 {
		expiration = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("chat:ip:%s", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Chat rate limit exceeded. Please wait before sending more messages.",
				"code":  fiber.StatusTooManyRequests,
			})
		},
		SkipSuccessfulRequests: false,
		SkipFailedRequests:     true,
	})
}
