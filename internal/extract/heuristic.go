package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ladle/internal/model"
)

// Selector classes the heuristic tier scrapes. These are inherently
// site-specific and low-precision; the tier exists as a non-empty-result
// guarantee, not as a reliable parser.
const (
	ingredientsSelector  = ".recipe-ingredients li, .ingredients li"
	instructionsSelector = ".recipe-instructions li, .instructions li"
)

// Heuristic is the fallback extraction tier: best-effort page scrape
// from the document title, meta tags, and known selector classes. It
// always produces a record, however sparse.
type Heuristic struct{}

// Extract never reports false; the pipeline relies on this tier always
// returning something.
func (Heuristic) Extract(doc *goquery.Document) (*model.Recipe, bool) {
	r := &model.Recipe{Category: model.CategorySweet}

	r.Title = strings.TrimSpace(doc.Find("title").First().Text())
	r.Image = doc.Find(`meta[property="og:image"]`).First().AttrOr("content", "")

	// nil when the match set is empty: "nothing found" stays
	// distinguishable from "found an empty list".
	r.Ingredients = selectionLines(doc, ingredientsSelector)
	r.Steps = selectionLines(doc, instructionsSelector)

	return r, true
}

func selectionLines(doc *goquery.Document, selector string) []string {
	var lines []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, strings.TrimSpace(s.Text()))
	})
	return lines
}
