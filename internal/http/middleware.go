package http

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ladle/internal/config"
	"ladle/internal/metrics"
)

// requestMiddleware assigns a request ID, records metrics, and logs
// every request.
func requestMiddleware(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()

		metrics.RecordRequest(method, path, status, latency.Milliseconds())

		if logger != nil {
			logger.Info("request",
				"request_id", reqID,
				"method", method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}

		return err
	}
}

// rateLimitMiddleware enforces a fixed-window per-minute limit per
// client IP using Redis. It guards the import endpoint so a misbehaving
// caller cannot hammer third-party recipe sites through us.
func rateLimitMiddleware(cfg *config.Config, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || cfg.RateLimit.ImportPerMinute <= 0 {
			return c.Next()
		}

		window := time.Now().UTC().Format("200601021504") // YYYYMMDDHHMM minute window
		key := fmt.Sprintf("ladle:rl:%s:%s", c.IP(), window)

		ctx := c.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down should not take imports down with it.
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, 2*time.Minute)
		}

		if count > int64(cfg.RateLimit.ImportPerMinute) {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Success: false,
				Code:    "RATE_LIMITED",
				Error:   "Too many import requests, try again in a minute",
			})
		}

		return c.Next()
	}
}
