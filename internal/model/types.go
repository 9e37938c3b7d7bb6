package model

import (
	"encoding/json"
	"fmt"
)

// Category is the closed primary classification for recipes. Exactly two
// values are valid; identity matching and persistence both depend on the
// set staying closed, so it must not be widened to arbitrary strings.
type Category string

const (
	CategorySweet  Category = "Sweet"
	CategorySavory Category = "Savory"
)

// Valid reports whether c is one of the two allowed category values.
func (c Category) Valid() bool {
	return c == CategorySweet || c == CategorySavory
}

// UnmarshalJSON decodes a category and rejects anything outside the
// closed set, so invalid values cannot enter via the API or sync payloads.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed := Category(s)
	if !parsed.Valid() {
		return fmt.Errorf("invalid category %q (want %q or %q)", s, CategorySweet, CategorySavory)
	}
	*c = parsed
	return nil
}

// Recipe is the central entity. JSON field names are part of the sync
// wire format and must stay stable.
//
// Ingredients and Steps distinguish nil (no extraction evidence) from a
// present-but-empty list; the extractors and the store both preserve that
// distinction.
type Recipe struct {
	// ID is the local surrogate identifier assigned by the store on
	// insert; zero for not-yet-persisted instances.
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Image       string   `json:"image,omitempty"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	// URL is the source page the recipe was extracted from; empty for
	// manually authored recipes.
	URL         string   `json:"url"`
	Category    Category `json:"category"`
	SubCategory string   `json:"subCategory"`
	Tags        []string `json:"tags,omitempty"`
}

// Identity is the deduplication key used for local upserts and remote
// sync matching. Two recipes with the same title and category are the
// same recipe, regardless of ID.
type Identity struct {
	Title    string
	Category Category
}

// Identity returns the recipe's deduplication key.
func (r *Recipe) Identity() Identity {
	return Identity{Title: r.Title, Category: r.Category}
}
