package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ladle/internal/fetch"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(fetch.NewHTTPFetcher(0, "", false), nil)
}

func TestPipeline_StructuredDataWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<title>Fallback Title</title>
			<script type="application/ld+json">{"@type": "Recipe", "name": "Carbonara"}</script>
		</head><body></body></html>`))
	}))
	defer srv.Close()

	res, err := newTestPipeline().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Recipe.Title != "Carbonara" {
		t.Fatalf("title = %q, want the structured-data title", res.Recipe.Title)
	}
	if res.Recipe.URL != srv.URL {
		t.Fatalf("url = %q, pipeline must populate the input URL", res.Recipe.URL)
	}
	if res.Page == nil || res.Page.HTML == "" {
		t.Fatalf("expected the fetched page alongside the recipe")
	}
}

func TestPipeline_FallsBackToHeuristic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<title>Plain Page</title>
			<script type="application/ld+json">{"@type": "Organization", "name": "Nobody"}</script>
		</head><body></body></html>`))
	}))
	defer srv.Close()

	res, err := newTestPipeline().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Recipe == nil {
		t.Fatalf("heuristic fallback must always produce a recipe")
	}
	if res.Recipe.Title != "Plain Page" {
		t.Fatalf("title = %q, want the document title", res.Recipe.Title)
	}
	if res.Recipe.URL != srv.URL {
		t.Fatalf("url = %q, pipeline must populate the input URL", res.Recipe.URL)
	}
}

func TestPipeline_FetchFailureIsDistinguished(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestPipeline().Extract(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected an error for a failing fetch")
	}

	var fetchErr *fetch.Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetch.Error so callers can tell fetch failures from empty pages, got %T", err)
	}
}
