// Package feed downloads podcast feeds and parses them into podcasts.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tesso57/pood/internal/domain/podcast"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "pood/1.0"
	// DefaultTimeout bounds a single feed download.
	DefaultTimeout = 30 * time.Second
)

const feedAcceptHeader = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

type acceptTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t acceptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", feedAcceptHeader)
	}
	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	return base.RoundTrip(clone)
}

// Fetcher downloads and parses feeds over HTTP.
type Fetcher struct {
	Client  *http.Client
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewFetcher builds a Fetcher that identifies itself with userAgent.
// A zero timeout falls back to DefaultTimeout.
func NewFetcher(userAgent string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return new(Fetcher{
		Client:  &http.Client{Transport: acceptTransport{base: http.DefaultTransport, userAgent: userAgent}},
		Timeout: timeout,
		Logger:  logger,
	})
}

// Fetch downloads the raw feed document at url.
// Connection failures and non-2xx answers are returned as *NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("feed url is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	f.logger().Debug("fetched feed", "feed_url", url, "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

// Load fetches url and parses it into a podcast whose FeedURL is url.
func (f *Fetcher) Load(ctx context.Context, url string) (*podcast.Podcast, error) {
	url = strings.TrimSpace(url)
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	p, err := Decode(data)
	if err != nil {
		return nil, err
	}
	p.FeedURL = url
	f.logger().Debug("parsed feed", "feed_url", url, "title", p.Title, "episodes", len(p.Episodes))
	return p, nil
}

// Decode classifies a downloaded document and parses it.
// JSON feeds and XML documents that are neither RSS nor Atom are rejected.
func Decode(data []byte) (*podcast.Podcast, error) {
	kind := gofeed.DetectFeedType(bytes.NewReader(data))
	if kind == gofeed.FeedTypeJSON {
		return nil, unsupported("JSON feeds are not supported")
	}

	p, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if kind == gofeed.FeedTypeUnknown {
		return nil, unsupported("document is not an RSS or Atom feed")
	}
	return p, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Transport: acceptTransport{base: http.DefaultTransport, userAgent: DefaultUserAgent}}
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
