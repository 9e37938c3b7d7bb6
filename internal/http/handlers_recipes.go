package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ladle/internal/model"
	"ladle/internal/store"
)

// listRecipesHandler returns stored recipes, optionally filtered by
// category and tag query parameters.
func listRecipesHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)
	ctx := c.Context()

	var (
		recipes []model.Recipe
		err     error
	)

	switch {
	case c.Query("category") != "":
		category := model.Category(c.Query("category"))
		if !category.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "BAD_REQUEST",
				Error:   "Unknown category '" + c.Query("category") + "'",
			})
		}
		recipes, err = st.ListByCategory(ctx, category)
	case c.Query("tag") != "":
		recipes, err = st.ListByTag(ctx, c.Query("tag"))
	default:
		recipes, err = st.List(ctx)
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	if recipes == nil {
		recipes = []model.Recipe{}
	}

	return c.JSON(RecipesResponse{Success: true, Recipes: recipes})
}

func getRecipeHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Invalid recipe id",
		})
	}

	recipe, err := st.Get(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}
	if recipe == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Success: false,
			Code:    "NOT_FOUND",
			Error:   "Recipe not found",
		})
	}

	return c.JSON(RecipeResponse{Success: true, Recipe: recipe})
}

// createRecipeHandler stores a manually authored recipe. A recipe with
// the same title and category replaces the existing row.
func createRecipeHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	var reqBody CreateRecipeRequest
	if err := c.BodyParser(&reqBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	if reqBody.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'title'",
		})
	}
	category := model.Category(reqBody.Category)
	if !category.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Unknown category '" + reqBody.Category + "'",
		})
	}

	recipe := model.Recipe{
		Title:       reqBody.Title,
		Image:       reqBody.Image,
		Ingredients: reqBody.Ingredients,
		Steps:       reqBody.Steps,
		URL:         reqBody.URL,
		Category:    category,
		SubCategory: reqBody.SubCategory,
		Tags:        reqBody.Tags,
	}

	if err := st.Upsert(c.Context(), &recipe); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(RecipeResponse{Success: true, Recipe: &recipe})
}

// deleteRecipeHandler removes a recipe. Deleting an id that does not
// exist is a no-op and still succeeds.
func deleteRecipeHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Invalid recipe id",
		})
	}

	if err := st.Delete(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
