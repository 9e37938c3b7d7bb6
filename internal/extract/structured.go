package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ladle/internal/model"
)

// StructuredData extracts a recipe from embedded JSON-LD blocks. It is
// the first extraction tier: precise when schema.org Recipe markup is
// present, absent otherwise.
type StructuredData struct{}

// Extract scans every script block declared as linked data, in document
// order, and returns the first schema.org Recipe object found. A block
// that fails to parse is skipped, never fatal. Returns ok=false when no
// block yields a Recipe, which is the normal "no structured data"
// outcome rather than an error.
func (StructuredData) Extract(doc *goquery.Document) (*model.Recipe, bool) {
	var recipe *model.Recipe

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var root any
		if err := json.Unmarshal([]byte(s.Text()), &root); err != nil {
			return true // malformed block, keep scanning
		}

		if obj := findRecipeObject(root); obj != nil {
			recipe = recipeFromJSONLD(obj)
			return false // first match wins
		}
		return true
	})

	if recipe == nil {
		return nil, false
	}
	return recipe, true
}

// findRecipeObject locates the object with @type "Recipe" in a decoded
// JSON-LD root: the object itself, a member of its @graph array, or an
// element of a top-level array.
func findRecipeObject(root any) map[string]any {
	switch v := root.(type) {
	case map[string]any:
		if v["@type"] == "Recipe" {
			return v
		}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if obj, ok := item.(map[string]any); ok && obj["@type"] == "Recipe" {
					return obj
				}
			}
		}
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok && obj["@type"] == "Recipe" {
				return obj
			}
		}
	}
	return nil
}

// recipeFromJSONLD maps a schema.org Recipe object to the internal
// shape, normalizing the polymorphic field variants up front so nothing
// downstream has to branch on shape. Source URL, category, and
// subcategory are intentionally left at their defaults; they always
// require user confirmation downstream.
func recipeFromJSONLD(obj map[string]any) *model.Recipe {
	r := &model.Recipe{Category: model.CategorySweet}

	if name, ok := obj["name"].(string); ok {
		r.Title = name
	}

	r.Image = imageURL(obj["image"])

	if raw, ok := obj["recipeIngredient"].([]any); ok {
		ingredients := make([]string, 0, len(raw))
		for _, item := range raw {
			ingredients = append(ingredients, coerceString(item))
		}
		r.Ingredients = ingredients
	}

	r.Steps = instructionSteps(obj["recipeInstructions"])

	return r
}

// imageURL normalizes the image field: a single string is used as-is, an
// array contributes its first string element, anything else is absent.
func imageURL(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case []any:
		if len(img) > 0 {
			return coerceString(img[0])
		}
	}
	return ""
}

// instructionSteps normalizes recipeInstructions: an array of step
// objects (each object's text field, entries without one dropped), a
// single step object, or a plain string. Any other shape, or an absent
// field, yields nil.
func instructionSteps(v any) []string {
	switch instr := v.(type) {
	case []any:
		steps := []string{}
		for _, item := range instr {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := obj["text"].(string); ok {
				steps = append(steps, text)
			}
		}
		return steps
	case map[string]any:
		if text, ok := instr["text"].(string); ok {
			return []string{text}
		}
		return nil
	case string:
		return []string{instr}
	}
	return nil
}

// coerceString renders a JSON value as a string; non-string scalars keep
// their literal form.
func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}
