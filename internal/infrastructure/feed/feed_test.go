package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tesso57/pood/internal/domain/podcast"
)

func serve(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetcherHeaders(t *testing.T) {
	var gotAccept, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	f := NewFetcher("pood-test/2.0", time.Second, nil)
	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotUA != "pood-test/2.0" {
		t.Errorf("Expected User-Agent 'pood-test/2.0', got %q", gotUA)
	}
	if !strings.Contains(gotAccept, "application/rss+xml") {
		t.Errorf("Expected Accept header to include rss, got %q", gotAccept)
	}
}

func TestFetcherDefaultUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	if _, err := NewFetcher("", 0, nil).Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("Expected default User-Agent, got %q", gotUA)
	}
}

func TestFetcherLoad(t *testing.T) {
	server := serve(t, http.StatusOK, "application/rss+xml", sampleRSS)

	p, err := NewFetcher("", time.Second, nil).Load(context.Background(), "  "+server.URL+"\n")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.FeedURL != server.URL {
		t.Errorf("Expected FeedURL %q, got %q", server.URL, p.FeedURL)
	}
	if p.Title != "Go Time" {
		t.Errorf("Expected title 'Go Time', got %q", p.Title)
	}
	if len(p.Episodes) != 3 || p.Episodes[0].Title != "Episode 1" {
		t.Errorf("Unexpected episodes: %#v", p.Titles())
	}
}

func TestFetcherStatusError(t *testing.T) {
	server := serve(t, http.StatusNotFound, "text/plain", "gone")

	_, err := NewFetcher("", time.Second, nil).Load(context.Background(), server.URL)
	if !errors.Is(err, podcast.ErrNetwork) {
		t.Fatalf("Expected network error, got %v", err)
	}
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("Expected *NetworkError, got %T", err)
	}
	if nerr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", nerr.StatusCode)
	}
}

func TestFetcherConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewFetcher("", time.Second, nil).Fetch(context.Background(), url)
	if !errors.Is(err, podcast.ErrNetwork) {
		t.Fatalf("Expected network error, got %v", err)
	}
}

func TestFetcherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	_, err := NewFetcher("", 50*time.Millisecond, nil).Fetch(context.Background(), server.URL)
	if !errors.Is(err, podcast.ErrNetwork) {
		t.Fatalf("Expected network error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded in chain, got %v", err)
	}
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher("", 0, nil)
	if f.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", f.Timeout, DefaultTimeout)
	}
	if f := NewFetcher("", 5*time.Second, nil); f.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", f.Timeout)
	}
}

func TestFetcherEmptyURL(t *testing.T) {
	if _, err := NewFetcher("", 0, nil).Fetch(context.Background(), " \t"); err == nil {
		t.Fatal("Expected error for empty url")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind error
	}{
		{name: "rss", body: sampleRSS},
		{name: "json feed", body: `{"version": "https://jsonfeed.org/version/1.1", "title": "x", "items": []}`, wantKind: podcast.ErrFeedUnsupported},
		{name: "html page", body: `<html><head><title>Not a feed</title></head></html>`, wantKind: podcast.ErrFeedUnsupported},
		{name: "broken xml", body: `<rss><channel><item></channel>`, wantKind: podcast.ErrFeedMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode([]byte(tt.body))
			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if p == nil {
					t.Fatal("Expected podcast")
				}
				return
			}
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Expected %v, got %v", tt.wantKind, err)
			}
			if p != nil {
				t.Fatalf("Expected no podcast on error, got %#v", p)
			}
		})
	}
}
