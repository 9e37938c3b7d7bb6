package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeDrive is a minimal in-memory remote file store speaking the wire
// shape the client expects.
type fakeDrive struct {
	files   map[string]string // id -> content
	names   map[string]string // id -> name
	nextID  int
	lastReq *http.Request
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{files: map[string]string{}, names: map[string]string{}, nextID: 1}
}

func (f *fakeDrive) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lastReq = r

		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/files":
			type meta struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}
			var out struct {
				Files []meta `json:"files"`
			}
			for id, name := range f.names {
				out.Files = append(out.Files, meta{ID: id, Name: name})
			}
			json.NewEncoder(w).Encode(out)

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/files/"):
			id := strings.TrimPrefix(r.URL.Path, "/files/")
			content, ok := f.files[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			io.WriteString(w, content)

		case r.Method == http.MethodPost && r.URL.Path == "/files":
			var body struct {
				Name     string `json:"name"`
				MimeType string `json:"mimeType"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			id := fmt.Sprintf("file-%d", f.nextID)
			f.nextID++
			f.names[id] = body.Name
			f.files[id] = ""
			json.NewEncoder(w).Encode(map[string]string{"id": id, "name": body.Name})

		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/files/"):
			id := strings.TrimPrefix(r.URL.Path, "/files/")
			if _, ok := f.files[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			data, _ := io.ReadAll(r.Body)
			f.files[id] = string(data)

		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL)
		}
	})
}

func newTestClient(t *testing.T) (*Client, *fakeDrive) {
	t.Helper()
	fake := newFakeDrive()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.URL), fake
}

func TestCreateListDownloadRoundTrip(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	if err := client.Create(ctx, "good-token", "recipes.json", `[{"title":"Cake"}]`); err != nil {
		t.Fatalf("create: %v", err)
	}

	files, err := client.List(ctx, "good-token")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 || files[0].Name != "recipes.json" {
		t.Fatalf("files = %v", files)
	}

	content, err := client.Download(ctx, "good-token", files[0].ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if content != `[{"title":"Cake"}]` {
		t.Fatalf("content = %q", content)
	}

	_ = fake
}

func TestUpdateOverwrites(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	if err := client.Create(ctx, "good-token", "recipes.json", "v1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	files, err := client.List(ctx, "good-token")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if err := client.Update(ctx, "good-token", files[0].ID, "v2"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := fake.files[files[0].ID]; got != "v2" {
		t.Fatalf("content after update = %q", got)
	}
}

func TestNonSuccessStatusBecomesError(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.List(context.Background(), "bad-token")
	if err == nil {
		t.Fatalf("expected error for unauthorized list")
	}

	var driveErr *Error
	if !errors.As(err, &driveErr) {
		t.Fatalf("expected *drive.Error, got %T", err)
	}
	if driveErr.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d", driveErr.Status)
	}
}

func TestDownloadMissingFile(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Download(context.Background(), "good-token", "nope")
	var driveErr *Error
	if !errors.As(err, &driveErr) || driveErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 drive error, got %v", err)
	}
}
