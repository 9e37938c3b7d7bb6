package http

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ladle/internal/config"
	"ladle/internal/drive"
	"ladle/internal/metrics"
	"ladle/internal/store"
	syncer "ladle/internal/sync"
)

// syncPullHandler merges recipes from the remote file store into the
// local database. Remote recipes whose (title, category) already exists
// locally are skipped.
func syncPullHandler(c *fiber.Ctx) error {
	return runSync(c, "pull")
}

// syncPushHandler replaces the remote recipe file with the full local
// collection.
func syncPushHandler(c *fiber.Ctx) error {
	return runSync(c, "push")
}

func runSync(c *fiber.Ctx, direction string) error {
	cfg := c.Locals("config").(*config.Config)
	st := c.Locals("store").(*store.Store)
	var logger *slog.Logger
	if val := c.Locals("logger"); val != nil {
		logger, _ = val.(*slog.Logger)
	}

	token := bearerToken(c)
	if token == "" {
		metrics.RecordSync(direction, false)
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "NOT_AUTHORIZED",
			Error:   "Missing bearer token",
		})
	}

	remote := drive.NewClient(cfg.Drive.APIBaseURL, cfg.Drive.UploadBaseURL)
	rec := syncer.NewReconciler(st, remote, logger)

	var (
		result *syncer.Result
		err    error
	)
	if direction == "pull" {
		result, err = rec.Pull(c.Context(), token)
	} else {
		result, err = rec.Push(c.Context(), token)
	}

	if err != nil {
		metrics.RecordSync(direction, false)

		if errors.Is(err, syncer.ErrNotAuthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Success: false,
				Code:    "NOT_AUTHORIZED",
				Error:   "Not authorized for remote sync",
			})
		}
		var driveErr *drive.Error
		if errors.As(err, &driveErr) {
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
				Success: false,
				Code:    "SYNC_FAILED",
				Error:   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	metrics.RecordSync(direction, true)
	return c.JSON(SyncResponse{Success: true, Result: result})
}

// bearerToken extracts the token from an "Authorization: Bearer ..."
// header, returning "" when absent or malformed.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
