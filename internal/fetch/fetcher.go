package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"
)

// DefaultTimeout bounds a single fetch attempt.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is a browser-like identity header; some recipe sites
// reject requests with an obvious bot agent.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Error is the typed failure for a fetch attempt: transport error,
// timeout, non-success status, or an unparseable response body.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Page is the raw result of a fetch: the parsed document for the
// extractors plus the original HTML for callers that want a different
// rendition of the page.
type Page struct {
	URL    string
	Doc    *goquery.Document
	HTML   string
	Status int
}

// Fetcher retrieves a web page for extraction. Implementations make a
// single attempt per call; retry policy belongs to the caller.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// HTTPFetcher fetches pages with plain net/http. It is the default
// engine; the browser-backed fetcher exists for JS-heavy sites.
type HTTPFetcher struct {
	client        *http.Client
	userAgent     string
	respectRobots bool
}

// NewHTTPFetcher constructs an HTTPFetcher. A zero timeout falls back to
// DefaultTimeout, an empty userAgent to DefaultUserAgent.
func NewHTTPFetcher(timeout time.Duration, userAgent string, respectRobots bool) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client:        &http.Client{Timeout: timeout},
		userAgent:     userAgent,
		respectRobots: respectRobots,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := parseAbsoluteURL(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	if f.respectRobots {
		if err := f.checkRobots(ctx, u); err != nil {
			return nil, &Error{URL: rawURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("parse html: %w", err)}
	}

	return &Page{
		URL:    u.String(),
		Doc:    doc,
		HTML:   string(body),
		Status: resp.StatusCode,
	}, nil
}

// checkRobots fetches the host's robots.txt and reports an error when it
// disallows our user agent. A missing or unreadable robots.txt allows
// the fetch.
func (f *HTTPFetcher) checkRobots(ctx context.Context, u *url.URL) error {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, data)
	if err != nil {
		return nil
	}
	if !robots.TestAgent(u.Path, f.userAgent) {
		return fmt.Errorf("blocked by robots.txt")
	}
	return nil
}

// parseAbsoluteURL validates that rawURL is a well-formed absolute
// http(s) URL.
func parseAbsoluteURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	return u, nil
}
