package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPFetcher_Success(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><head><title>Carbonara</title></head><body></body></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(0, "", false)
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if title := page.Doc.Find("title").Text(); title != "Carbonara" {
		t.Fatalf("expected parsed document, got title %q", title)
	}
	if page.Status != http.StatusOK {
		t.Fatalf("status = %d", page.Status)
	}
	if gotAgent != DefaultUserAgent {
		t.Fatalf("expected browser-like User-Agent, got %q", gotAgent)
	}
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(0, "", false)
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error for 404 response")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetch.Error, got %T", err)
	}
}

func TestHTTPFetcher_RejectsNonAbsoluteURL(t *testing.T) {
	f := NewHTTPFetcher(0, "", false)
	for _, raw := range []string{"", "ftp://example.com/x", "/relative/path", "example.com/no-scheme"} {
		if _, err := f.Fetch(context.Background(), raw); err == nil {
			t.Fatalf("expected error for URL %q", raw)
		}
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(50*time.Millisecond, "", false)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestHTTPFetcher_RobotsDisallow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHTTPFetcher(0, "", true)

	if _, err := f.Fetch(context.Background(), srv.URL+"/private/cake"); err == nil {
		t.Fatalf("expected robots.txt to block the fetch")
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/public/cake"); err != nil {
		t.Fatalf("expected allowed path to fetch, got %v", err)
	}
}
