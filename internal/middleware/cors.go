package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	// AllowedOrigins is a comma separated list of exact origins; "*" allows any origin.
	AllowedOrigins string
}

// CORS returns a Fiber handler that reflects allowed origins and answers preflight requests.
// Requests without an Origin header (same-origin, curl) pass through untouched.
func CORS(cfg CORSConfig) fiber.Handler {
	allowAny := false
	allowed := map[string]bool{}
	for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAny = true
		} else if o != "" {
			allowed[strings.ToLower(o)] = true
		}
	}
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}
		if !allowAny && !allowed[strings.ToLower(origin)] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status": "error",
				"error": fiber.Map{
					"message":    "Not allowed by CORS",
					"statusCode": 403,
					"details":    fiber.Map{},
				},
			})
		}
		setCORSHeaders(c, origin)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set("Access-Control-Allow-Origin", origin)
	c.Set("Access-Control-Allow-Credentials", "true")
	c.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type, X-Trace-Id")
	c.Set("Access-Control-Expose-Headers", "X-Trace-Id, Content-Disposition")
	c.Set("Vary", "Origin")
}
