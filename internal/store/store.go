package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"ladle/internal/model"
)

// Store wraps access to the local recipe database. It is the only
// serialization point shared between concurrent import and sync
// operations; SQLite guarantees the per-row atomicity the callers rely on.
type Store struct {
	DB *sql.DB
}

// New creates a Store on top of an existing *sql.DB.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Open opens (or creates) the SQLite database at path and applies the
// pragmas we always want for a single-user local file.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	return db, nil
}

// encodeLines serializes an ordered line list to a JSON text column.
// A nil slice maps to SQL NULL so that "no extraction evidence" stays
// distinguishable from a present-but-empty list.
func encodeLines(lines []string) (any, error) {
	if lines == nil {
		return nil, nil
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode lines: %w", err)
	}
	return string(data), nil
}

// decodeLines is the inverse of encodeLines.
func decodeLines(col sql.NullString) ([]string, error) {
	if !col.Valid {
		return nil, nil
	}
	lines := []string{}
	if err := json.Unmarshal([]byte(col.String), &lines); err != nil {
		return nil, fmt.Errorf("decode lines: %w", err)
	}
	return lines, nil
}

// Upsert inserts the recipe, replacing any existing row with the same
// (title, category) identity. On replace the existing surrogate ID is
// kept. The recipe's ID field is updated to the persisted row's ID.
func (s *Store) Upsert(ctx context.Context, r *model.Recipe) error {
	if !r.Category.Valid() {
		return fmt.Errorf("upsert recipe: invalid category %q", r.Category)
	}

	ingredients, err := encodeLines(r.Ingredients)
	if err != nil {
		return fmt.Errorf("upsert recipe: %w", err)
	}
	steps, err := encodeLines(r.Steps)
	if err != nil {
		return fmt.Errorf("upsert recipe: %w", err)
	}
	tags, err := encodeLines(r.Tags)
	if err != nil {
		return fmt.Errorf("upsert recipe: %w", err)
	}

	var id int64
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO recipes (title, image, ingredients, steps, url, category, sub_category, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (title, category) DO UPDATE SET
			image = excluded.image,
			ingredients = excluded.ingredients,
			steps = excluded.steps,
			url = excluded.url,
			sub_category = excluded.sub_category,
			tags = excluded.tags,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, r.Title, nullable(r.Image), ingredients, steps, r.URL, string(r.Category), r.SubCategory, tags).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert recipe: %w", err)
	}

	r.ID = id
	return nil
}

// Delete removes a recipe by surrogate ID. Deleting an absent ID is not
// an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// Get fetches a recipe by surrogate ID, returning (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	row := s.DB.QueryRowContext(ctx, selectColumns+` FROM recipes WHERE id = ?`, id)
	return scanOne(row)
}

// GetByIdentity performs the exact (title, category) lookup used for
// deduplication. Returns (nil, nil) when no such recipe exists.
func (s *Store) GetByIdentity(ctx context.Context, title string, category model.Category) (*model.Recipe, error) {
	row := s.DB.QueryRowContext(ctx,
		selectColumns+` FROM recipes WHERE title = ? AND category = ? LIMIT 1`,
		title, string(category))
	return scanOne(row)
}

// List returns a one-shot snapshot of every stored recipe.
func (s *Store) List(ctx context.Context) ([]model.Recipe, error) {
	return s.list(ctx, selectColumns+` FROM recipes ORDER BY id`)
}

// ListByCategory returns recipes in the given category.
func (s *Store) ListByCategory(ctx context.Context, category model.Category) ([]model.Recipe, error) {
	return s.list(ctx, selectColumns+` FROM recipes WHERE category = ? ORDER BY id`, string(category))
}

// ListByTag returns recipes whose tags contain the given substring.
func (s *Store) ListByTag(ctx context.Context, tag string) ([]model.Recipe, error) {
	return s.list(ctx, selectColumns+` FROM recipes WHERE tags LIKE '%' || ? || '%' ORDER BY id`, tag)
}

const selectColumns = `SELECT id, title, image, ingredients, steps, url, category, sub_category, tags`

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*model.Recipe, error) {
	var (
		r           model.Recipe
		image       sql.NullString
		ingredients sql.NullString
		steps       sql.NullString
		category    string
		tags        sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Title, &image, &ingredients, &steps, &r.URL, &category, &r.SubCategory, &tags); err != nil {
		return nil, err
	}

	r.Image = image.String
	r.Category = model.Category(category)

	var err error
	if r.Ingredients, err = decodeLines(ingredients); err != nil {
		return nil, err
	}
	if r.Steps, err = decodeLines(steps); err != nil {
		return nil, err
	}
	if r.Tags, err = decodeLines(tags); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanOne(row *sql.Row) (*model.Recipe, error) {
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan recipe: %w", err)
	}
	return r, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]model.Recipe, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}
