package extract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"ladle/internal/fetch"
	"ladle/internal/model"
)

// Extractor is one tier of the extraction chain. Returning ok=false
// means "this tier found nothing", not an error; the pipeline moves on
// to the next tier.
type Extractor interface {
	Extract(doc *goquery.Document) (*model.Recipe, bool)
}

// ErrNoRecipe is returned when every tier comes up empty. With the
// default chain this cannot happen (the heuristic tier always answers),
// but custom chains may be stricter.
var ErrNoRecipe = errors.New("extract: no recipe found")

// Result carries the extracted recipe together with the fetched page so
// callers can offer alternative renditions of the source.
type Result struct {
	Recipe *model.Recipe
	Page   *fetch.Page
}

// Pipeline orchestrates fetch and the ordered extraction chain:
// structured data first, heuristic scrape as the fallback. Strictly
// sequential, no internal parallelism; concurrent pipeline runs share
// nothing but the store.
type Pipeline struct {
	fetcher    fetch.Fetcher
	extractors []Extractor
	logger     *slog.Logger
}

// NewPipeline builds a pipeline over the given fetcher with the default
// two-tier chain.
func NewPipeline(fetcher fetch.Fetcher, logger *slog.Logger) *Pipeline {
	return NewPipelineWithExtractors(fetcher, logger, StructuredData{}, Heuristic{})
}

// NewPipelineWithExtractors builds a pipeline with a custom chain, tried
// in order. Site-specific tiers slot in here without touching the
// orchestration.
func NewPipelineWithExtractors(fetcher fetch.Fetcher, logger *slog.Logger, extractors ...Extractor) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{fetcher: fetcher, extractors: extractors, logger: logger}
}

// Extract fetches the page and runs the chain. A fetch failure is
// returned as the distinguished *fetch.Error so callers can tell
// "network down / bad URL" apart from "page had no recipe". On success
// the recipe's URL field is populated with the input URL.
func (p *Pipeline) Extract(ctx context.Context, rawURL string) (*Result, error) {
	page, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		p.logger.Warn("fetch failed", "url", rawURL, "error", err)
		return nil, err
	}

	for _, ex := range p.extractors {
		recipe, ok := ex.Extract(page.Doc)
		if !ok {
			continue
		}
		recipe.URL = rawURL
		return &Result{Recipe: recipe, Page: page}, nil
	}

	return nil, ErrNoRecipe
}
