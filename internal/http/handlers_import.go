package http

import (
	"errors"
	"log/slog"
	"net/url"
	"time"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gofiber/fiber/v2"

	"ladle/internal/config"
	"ladle/internal/extract"
	"ladle/internal/fetch"
	"ladle/internal/metrics"
	"ladle/internal/model"
	"ladle/internal/store"
)

// importHandler fetches a web page and extracts a recipe from it.
// Structured JSON-LD data wins; a heuristic pass fills in when the site
// publishes none. Category, subCategory, and tags come from the request
// because extraction never derives them from the page.
func importHandler(c *fiber.Ctx) error {
	var reqBody ImportRequest
	if err := c.BodyParser(&reqBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	if reqBody.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'url'",
		})
	}
	var category *model.Category
	if reqBody.Category != nil {
		cat := model.Category(*reqBody.Category)
		if !cat.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "BAD_REQUEST",
				Error:   "Unknown category '" + *reqBody.Category + "'",
			})
		}
		category = &cat
	}

	cfg := c.Locals("config").(*config.Config)
	st := c.Locals("store").(*store.Store)
	var logger *slog.Logger
	if val := c.Locals("logger"); val != nil {
		logger, _ = val.(*slog.Logger)
	}

	tier := "http"
	var fetcher fetch.Fetcher
	if reqBody.UseBrowser {
		if !cfg.Browser.Enabled {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "BROWSER_DISABLED",
				Error:   "Browser-based fetching is not enabled on this server",
			})
		}
		tier = "browser"
		fetcher = fetch.NewBrowserFetcher(cfg.Browser.URL, time.Duration(cfg.Browser.TimeoutMs)*time.Millisecond)
	} else {
		fetcher = fetch.NewHTTPFetcher(
			time.Duration(cfg.Fetcher.TimeoutMs)*time.Millisecond,
			cfg.Fetcher.UserAgent,
			cfg.Fetcher.RespectRobots,
		)
	}

	pipeline := extract.NewPipeline(fetcher, logger)
	result, err := pipeline.Extract(c.Context(), reqBody.URL)
	if err != nil {
		metrics.RecordImport(tier, false)

		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) {
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
				Success: false,
				Code:    "FETCH_FAILED",
				Error:   err.Error(),
			})
		}
		if errors.Is(err, extract.ErrNoRecipe) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
				Success: false,
				Code:    "EXTRACTION_FAILED",
				Error:   "No recipe could be extracted from the page",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	recipe := result.Recipe
	if category != nil {
		recipe.Category = *category
	}
	if reqBody.SubCategory != nil {
		recipe.SubCategory = *reqBody.SubCategory
	}
	if len(reqBody.Tags) > 0 {
		recipe.Tags = reqBody.Tags
	}

	if reqBody.Save {
		if err := st.Upsert(c.Context(), recipe); err != nil {
			metrics.RecordImport(tier, false)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Success: false,
				Code:    "INTERNAL_ERROR",
				Error:   err.Error(),
			})
		}
	}

	resp := ImportResponse{Success: true, Recipe: recipe}
	if reqBody.IncludeSource && result.Page != nil {
		domain := ""
		if u, perr := url.Parse(reqBody.URL); perr == nil {
			domain = u.Hostname()
		}
		converter := htmlmd.NewConverter(domain, true, nil)
		if markdown, mdErr := converter.ConvertString(result.Page.HTML); mdErr == nil {
			resp.Source = markdown
		} else if logger != nil {
			logger.Warn("markdown conversion failed", "url", reqBody.URL, "error", mdErr)
		}
	}

	metrics.RecordImport(tier, true)
	return c.JSON(resp)
}
