package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterReturnsRetryAfter(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimiter(1, 30*time.Second))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "30", resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestRequestLoggerCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestLogger(base))
	app.Get("/", func(c *fiber.Ctx) error {
		Logger(c).Info("probe")
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	_, err := app.Test(req)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "msg=probe")
	assert.Contains(t, buf.String(), "req_id=req-123")
}

func TestLoggerFallsBackToDefault(t *testing.T) {
	app := fiber.New()
	var got *slog.Logger
	app.Get("/", func(c *fiber.Ctx) error {
		got = Logger(c)
		return nil
	})
	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Same(t, slog.Default(), got)
}
