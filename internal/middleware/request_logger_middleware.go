package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDKey = "requestid"
	loggerKey    = "logger"
)

// RequestLogger attaches a logger carrying the request id to every request.
// It must run after the requestid middleware; without it an id is generated
// here.
func RequestLogger(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := c.Locals(requestIDKey).(string)
		if id == "" {
			id = uuid.NewString()
			c.Locals(requestIDKey, id)
		}
		c.Locals(loggerKey, base.With("req_id", id))
		return c.Next()
	}
}

// Logger returns the request-scoped logger, or slog.Default outside
// RequestLogger.
func Logger(c *fiber.Ctx) *slog.Logger {
	if l, ok := c.Locals(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
