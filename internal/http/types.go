package http

import (
	"ladle/internal/model"
	syncer "ladle/internal/sync"
)

// ErrorResponse is the uniform error envelope for every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// ImportRequest asks the server to extract a recipe from a web page.
// Category, subCategory, and tags are user-confirmed values applied on
// top of the extraction result, which never derives them from the page.
// Category is a plain string so an unknown value surfaces as a semantic
// validation error instead of a JSON decode failure.
type ImportRequest struct {
	URL           string   `json:"url"`
	UseBrowser    bool     `json:"useBrowser,omitempty"`
	IncludeSource bool     `json:"includeSource,omitempty"`
	Save          bool     `json:"save,omitempty"`
	Category      *string  `json:"category,omitempty"`
	SubCategory   *string  `json:"subCategory,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// CreateRecipeRequest carries a manually authored recipe. Like
// ImportRequest it keeps category as a plain string for handler-side
// validation.
type CreateRecipeRequest struct {
	Title       string   `json:"title"`
	Image       string   `json:"image"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	URL         string   `json:"url"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Tags        []string `json:"tags"`
}

// ImportResponse returns the extracted recipe. Source carries a
// markdown rendition of the fetched page when includeSource was set.
type ImportResponse struct {
	Success bool          `json:"success"`
	Recipe  *model.Recipe `json:"recipe"`
	Source  string        `json:"source,omitempty"`
}

// RecipeResponse wraps a single recipe.
type RecipeResponse struct {
	Success bool          `json:"success"`
	Recipe  *model.Recipe `json:"recipe"`
}

// RecipesResponse wraps a recipe listing.
type RecipesResponse struct {
	Success bool           `json:"success"`
	Recipes []model.Recipe `json:"recipes"`
}

// SyncResponse wraps a sync result.
type SyncResponse struct {
	Success bool           `json:"success"`
	Result  *syncer.Result `json:"result"`
}
