// Package sync merges the local recipe collection with a remote
// file-backed store. Pull is additive only (local wins on conflict),
// push replaces the single remote file wholesale.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"ladle/internal/drive"
	"ladle/internal/model"
	"ladle/internal/store"
)

// RemoteFileName is the exact name of the one remote file both
// directions operate on.
const RemoteFileName = "recipes.json"

// ErrNotAuthorized is returned when a sync is attempted without a bearer
// token. It is surfaced distinctly so the caller can trigger a
// re-authorization flow instead of failing silently.
var ErrNotAuthorized = errors.New("sync: not authorized")

// Result reports the outcome of a sync operation. Status mirrors the
// human-readable strings the UI shows.
type Result struct {
	Status     string `json:"status"`
	Considered int    `json:"considered"`
	Inserted   int    `json:"inserted"`
}

// RemoteStore is the subset of the drive client the reconciler needs;
// tests substitute a fake.
type RemoteStore interface {
	List(ctx context.Context, token string) ([]drive.FileMeta, error)
	Download(ctx context.Context, token, fileID string) (string, error)
	Create(ctx context.Context, token, name, content string) error
	Update(ctx context.Context, token, fileID, content string) error
}

// Reconciler merges remote and local recipe sets by (title, category)
// identity. It never deletes locally and never updates an existing local
// recipe with remote data.
type Reconciler struct {
	store  *store.Store
	remote RemoteStore
	logger *slog.Logger
}

// NewReconciler builds a Reconciler over the local store and a remote
// client.
func NewReconciler(st *store.Store, remote RemoteStore, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: st, remote: remote, logger: logger}
}

// Pull downloads the remote recipe set and inserts every recipe whose
// identity is absent locally. Recipes are processed in remote order;
// partial progress is not rolled back if a later step fails.
func (r *Reconciler) Pull(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return nil, ErrNotAuthorized
	}

	meta, err := r.findRemoteFile(ctx, token)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return &Result{Status: "No " + RemoteFileName + " found, nothing to sync"}, nil
	}

	content, err := r.remote.Download(ctx, token, meta.ID)
	if err != nil {
		return nil, err
	}

	var recipes []model.Recipe
	if err := json.Unmarshal([]byte(content), &recipes); err != nil {
		return nil, fmt.Errorf("sync: decode remote recipes: %w", err)
	}

	inserted := 0
	for i := range recipes {
		recipe := recipes[i]

		existing, err := r.store.GetByIdentity(ctx, recipe.Title, recipe.Category)
		if err != nil {
			return nil, fmt.Errorf("sync: identity lookup: %w", err)
		}
		if existing != nil {
			continue // local wins, never update from remote
		}

		recipe.ID = 0 // remote surrogate IDs are meaningless locally
		if err := r.store.Upsert(ctx, &recipe); err != nil {
			return nil, fmt.Errorf("sync: insert recipe %q: %w", recipe.Title, err)
		}
		inserted++
	}

	r.logger.Info("pull complete", "considered", len(recipes), "inserted", inserted)
	return &Result{
		Status:     fmt.Sprintf("Sync completed: %d recipes", len(recipes)),
		Considered: len(recipes),
		Inserted:   inserted,
	}, nil
}

// Push serializes the entire local collection and replaces the remote
// file wholesale: update when it exists, create otherwise. No
// incremental diffing, no per-recipe granularity remotely.
func (r *Reconciler) Push(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return nil, ErrNotAuthorized
	}

	recipes, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: read local recipes: %w", err)
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}

	payload, err := json.Marshal(recipes)
	if err != nil {
		return nil, fmt.Errorf("sync: encode recipes: %w", err)
	}

	meta, err := r.findRemoteFile(ctx, token)
	if err != nil {
		return nil, err
	}

	if meta != nil {
		err = r.remote.Update(ctx, token, meta.ID, string(payload))
	} else {
		err = r.remote.Create(ctx, token, RemoteFileName, string(payload))
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("push complete", "recipes", len(recipes))
	return &Result{
		Status:     "Recipes uploaded successfully",
		Considered: len(recipes),
	}, nil
}

// findRemoteFile locates the remote recipes file by exact name, or nil
// when absent.
func (r *Reconciler) findRemoteFile(ctx context.Context, token string) (*drive.FileMeta, error) {
	files, err := r.remote.List(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range files {
		if files[i].Name == RemoteFileName {
			return &files[i], nil
		}
	}
	return nil, nil
}
