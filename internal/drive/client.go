// Package drive is a minimal client for a Google-Drive-style file store:
// list, download, create, and overwrite JSON files authenticated by a
// bearer token. It is the remote half of recipe sync.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultAPIBase    = "https://www.googleapis.com/drive/v3"
	defaultUploadBase = "https://www.googleapis.com/upload/drive/v3"
)

// Error is the typed failure for any remote store operation: transport
// failure or non-2xx response. No retries are attempted.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("drive %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("drive %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FileMeta identifies a remote file.
type FileMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client issues bearer-token-authenticated requests against the remote
// file store. Base URLs are configurable so tests can point at a local
// server.
//
// Calls carry no explicit timeout beyond the transport default; bound
// them with the caller's context. (Known gap carried over from the
// original design.)
type Client struct {
	httpClient *http.Client
	apiBase    string
	uploadBase string
}

// NewClient builds a Client. Empty base URLs fall back to the public
// Google Drive v3 endpoints.
func NewClient(apiBase, uploadBase string) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if uploadBase == "" {
		uploadBase = defaultUploadBase
	}
	return &Client{
		httpClient: &http.Client{},
		apiBase:    strings.TrimSuffix(apiBase, "/"),
		uploadBase: strings.TrimSuffix(uploadBase, "/"),
	}
}

// List returns metadata for the remote JSON files.
func (c *Client) List(ctx context.Context, token string) ([]FileMeta, error) {
	query := url.Values{"q": {"mimeType='application/json'"}}
	listURL := c.apiBase + "/files?" + query.Encode()

	body, err := c.do(ctx, "list", http.MethodGet, listURL, token, "", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Files []FileMeta `json:"files"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Op: "list", Err: fmt.Errorf("decode response: %w", err)}
	}
	return payload.Files, nil
}

// Download returns the raw content of a remote file.
func (c *Client) Download(ctx context.Context, token, fileID string) (string, error) {
	downloadURL := c.apiBase + "/files/" + fileID + "?alt=media"

	body, err := c.do(ctx, "download", http.MethodGet, downloadURL, token, "", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Create makes a new remote file in two phases: a metadata record first,
// then a follow-up request uploading the body content. There is no
// atomicity between the two calls; a failed second phase leaves an empty
// metadata record behind. (Known consistency gap, intentionally kept.)
func (c *Client) Create(ctx context.Context, token, name, content string) error {
	meta, err := json.Marshal(map[string]string{
		"name":     name,
		"mimeType": "application/json",
	})
	if err != nil {
		return &Error{Op: "create", Err: err}
	}

	body, err := c.do(ctx, "create", http.MethodPost, c.apiBase+"/files", token,
		"application/json; charset=UTF-8", bytes.NewReader(meta))
	if err != nil {
		return err
	}

	var created FileMeta
	if err := json.Unmarshal(body, &created); err != nil {
		return &Error{Op: "create", Err: fmt.Errorf("decode response: %w", err)}
	}

	return c.Update(ctx, token, created.ID, content)
}

// Update overwrites the content of an existing remote file in a single
// media upload.
func (c *Client) Update(ctx context.Context, token, fileID, content string) error {
	uploadURL := c.uploadBase + "/files/" + fileID + "?uploadType=media"

	_, err := c.do(ctx, "update", http.MethodPatch, uploadURL, token,
		"application/json; charset=UTF-8", strings.NewReader(content))
	return err
}

func (c *Client) do(ctx context.Context, op, method, reqURL, token, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, Status: resp.StatusCode}
	}
	return data, nil
}
