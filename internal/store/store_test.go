package store

import (
	"context"
	"path/filepath"
	"testing"

	"ladle/internal/migrate"
	"ladle/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ladle.db")
	if err := migrate.Run(path); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return New(db)
}

func TestUpsert_AssignsID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r := model.Recipe{Title: "Cake", Category: model.CategorySweet}
	if err := st.Upsert(ctx, &r); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if r.ID == 0 {
		t.Fatalf("expected assigned ID after upsert")
	}
}

func TestUpsert_ReplacesByIdentity(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := model.Recipe{Title: "Soup", Category: model.CategorySavory, SubCategory: "Starter"}
	if err := st.Upsert(ctx, &first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := model.Recipe{Title: "Soup", Category: model.CategorySavory, SubCategory: "Main", Tags: []string{"winter"}}
	if err := st.Upsert(ctx, &second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one row after identity conflict, got %d", len(all))
	}
	if all[0].ID != first.ID {
		t.Fatalf("replace changed surrogate ID: had %d, got %d", first.ID, all[0].ID)
	}
	if all[0].SubCategory != "Main" {
		t.Fatalf("expected replaced subCategory, got %q", all[0].SubCategory)
	}
}

func TestUpsert_SameTitleDifferentCategory(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sweet := model.Recipe{Title: "Pancakes", Category: model.CategorySweet}
	savory := model.Recipe{Title: "Pancakes", Category: model.CategorySavory}
	if err := st.Upsert(ctx, &sweet); err != nil {
		t.Fatalf("upsert sweet: %v", err)
	}
	if err := st.Upsert(ctx, &savory); err != nil {
		t.Fatalf("upsert savory: %v", err)
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two rows for distinct identities, got %d", len(all))
	}
}

func TestUpsert_RejectsInvalidCategory(t *testing.T) {
	st := newTestStore(t)

	r := model.Recipe{Title: "Mystery", Category: model.Category("Spicy")}
	if err := st.Upsert(context.Background(), &r); err == nil {
		t.Fatalf("expected error for category outside the closed set")
	}
}

func TestNilVsEmptyListsRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	absent := model.Recipe{Title: "Absent", Category: model.CategorySweet}
	empty := model.Recipe{Title: "Empty", Category: model.CategorySweet, Ingredients: []string{}, Steps: []string{}}
	for _, r := range []*model.Recipe{&absent, &empty} {
		if err := st.Upsert(ctx, r); err != nil {
			t.Fatalf("upsert %s: %v", r.Title, err)
		}
	}

	got, err := st.Get(ctx, absent.ID)
	if err != nil {
		t.Fatalf("get absent: %v", err)
	}
	if got.Ingredients != nil || got.Steps != nil {
		t.Fatalf("expected nil lists for absent evidence, got %v / %v", got.Ingredients, got.Steps)
	}

	got, err = st.Get(ctx, empty.ID)
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if got.Ingredients == nil || len(got.Ingredients) != 0 {
		t.Fatalf("expected present-but-empty ingredients, got %v", got.Ingredients)
	}
}

func TestGetByIdentity(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r := model.Recipe{Title: "Stew", Category: model.CategorySavory}
	if err := st.Upsert(ctx, &r); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := st.GetByIdentity(ctx, "Stew", model.CategorySavory)
	if err != nil {
		t.Fatalf("get by identity: %v", err)
	}
	if got == nil || got.ID != r.ID {
		t.Fatalf("expected stored recipe, got %v", got)
	}

	missing, err := st.GetByIdentity(ctx, "Stew", model.CategorySweet)
	if err != nil {
		t.Fatalf("get by identity (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for absent identity, got %v", missing)
	}
}

func TestFilters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	recipes := []model.Recipe{
		{Title: "Cake", Category: model.CategorySweet, Tags: []string{"oven", "party"}},
		{Title: "Soup", Category: model.CategorySavory, Tags: []string{"stovetop"}},
		{Title: "Bread", Category: model.CategorySavory, Tags: []string{"oven"}},
	}
	for i := range recipes {
		if err := st.Upsert(ctx, &recipes[i]); err != nil {
			t.Fatalf("upsert %s: %v", recipes[i].Title, err)
		}
	}

	savory, err := st.ListByCategory(ctx, model.CategorySavory)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(savory) != 2 {
		t.Fatalf("expected 2 savory recipes, got %d", len(savory))
	}

	oven, err := st.ListByTag(ctx, "oven")
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(oven) != 2 {
		t.Fatalf("expected 2 recipes tagged oven, got %d", len(oven))
	}
}

func TestDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r := model.Recipe{Title: "Tart", Category: model.CategorySweet}
	if err := st.Upsert(ctx, &r); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.Delete(ctx, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := st.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected recipe gone after delete, got %v", got)
	}

	// Deleting again is a no-op, not an error.
	if err := st.Delete(ctx, r.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
