package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserFetcher uses a real browser (via rod) to render JS-heavy pages
// before handing the HTML to the extractors. Some recipe sites only
// inject their JSON-LD blocks client-side.
type BrowserFetcher struct {
	BrowserURL string
	Timeout    time.Duration
}

// NewBrowserFetcher constructs a BrowserFetcher. browserURL may be empty
// to let rod manage a local browser.
func NewBrowserFetcher(browserURL string, timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BrowserFetcher{BrowserURL: browserURL, Timeout: timeout}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := parseAbsoluteURL(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	browser := rod.New().Context(ctx).Timeout(f.Timeout)
	if f.BrowserURL != "" {
		browser = browser.ControlURL(f.BrowserURL)
	}

	if err := browser.Connect(); err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	defer browser.MustClose()

	page, err := browser.Page(proto.TargetCreateTarget{URL: u.String()})
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	defer page.MustClose()

	if err := page.WaitLoad(); err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	htmlStr, err := page.HTML()
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	// The browser engine has no direct status code; a loaded page counts
	// as success.
	return &Page{
		URL:    u.String(),
		Doc:    doc,
		HTML:   htmlStr,
		Status: 200,
	}, nil
}
