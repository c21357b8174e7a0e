package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tesso57/pood/internal/infrastructure/record"
)

type feedServer struct {
	mu       sync.Mutex
	episodes []string
	delay    time.Duration
}

func (f *feedServer) set(titles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodes = titles
}

func (f *feedServer) slow(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

func (f *feedServer) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	var items strings.Builder
	// Newest first, the way most feeds publish.
	for i := len(f.episodes) - 1; i >= 0; i-- {
		fmt.Fprintf(&items, `<item><title>%s</title><enclosure url="https://cdn.example.com/%d.mp3" type="audio/mpeg"/></item>`, f.episodes[i], i)
	}
	w.Header().Set("Content-Type", "application/rss+xml")
	fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Go Time</title><description>Weekly</description>%s</channel></rss>`, items.String())
}

type harness struct {
	t      *testing.T
	root   string
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("NO_COLOR", "1")
	return &harness{t: t, root: root, config: filepath.Join(root, "config.yaml")}
}

func (h *harness) run(args ...string) (int, string, string) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", h.config}, args...)
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_AddSyncLog(t *testing.T) {
	h := newHarness(t)
	feed := &feedServer{}
	feed.set("Ep1")
	srv := httptest.NewServer(feed)
	defer srv.Close()

	code, out, errOut := h.run("--dir", h.root, "add", srv.URL)
	if code != 0 {
		t.Fatalf("add exit %d, stderr %q", code, errOut)
	}
	if !strings.Contains(out, "Added Go Time") {
		t.Fatalf("unexpected add output %q", out)
	}
	podDir := filepath.Join(h.root, "Go_Time")
	if _, err := os.Stat(filepath.Join(podDir, "pood.txt")); err != nil {
		t.Fatalf("record not created: %v", err)
	}

	feed.set("Ep1", "Ep2")
	code, out, errOut = h.run("--dir", podDir, "sync")
	if code != 0 {
		t.Fatalf("sync exit %d, stderr %q", code, errOut)
	}
	if out != "Go Time: 1 new episode\n    + Ep2\n          2 episodes recorded\n" {
		t.Fatalf("unexpected sync output %q", out)
	}

	code, out, _ = h.run("--dir", podDir, "sync")
	if code != 0 || !strings.HasPrefix(out, "Go Time: no new episodes\n          2 episodes recorded, last synced ") {
		t.Fatalf("second sync: exit %d output %q", code, out)
	}

	code, out, _ = h.run("log", "--limit", "2")
	if code != 0 {
		t.Fatalf("log exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "sync") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestRun_ConcurrentSyncsRecordOnce(t *testing.T) {
	h := newHarness(t)
	feed := &feedServer{}
	feed.set("Ep1")
	srv := httptest.NewServer(feed)
	defer srv.Close()

	if code, _, errOut := h.run("--dir", h.root, "add", srv.URL); code != 0 {
		t.Fatalf("add exit %d, stderr %q", code, errOut)
	}
	podDir := filepath.Join(h.root, "Go_Time")

	feed.set("Ep1", "Ep2")
	feed.slow(200 * time.Millisecond)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		outs []string
	)
	for range 2 {
		wg.Go(func() {
			code, out, errOut := h.run("--dir", podDir, "sync")
			if code != 0 {
				t.Errorf("sync exit %d, stderr %q", code, errOut)
			}
			mu.Lock()
			outs = append(outs, out)
			mu.Unlock()
		})
	}
	wg.Wait()

	reported := 0
	for _, out := range outs {
		if strings.HasPrefix(out, "Go Time: 1 new episode\n") {
			reported++
		}
	}
	if reported != 1 {
		t.Fatalf("expected exactly one sync to report Ep2, got %q", outs)
	}

	p, err := record.NewStore(podDir, "").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := strings.Join(p.Titles(), ","); got != "Ep1,Ep2" {
		t.Fatalf("stored titles = %q, want Ep1,Ep2", got)
	}
}

func TestRun_AddTwiceFails(t *testing.T) {
	h := newHarness(t)
	feed := &feedServer{}
	feed.set("Ep1")
	srv := httptest.NewServer(feed)
	defer srv.Close()

	if code, _, errOut := h.run("--dir", h.root, "add", srv.URL); code != 0 {
		t.Fatalf("first add exit %d, stderr %q", code, errOut)
	}
	code, _, errOut := h.run("--dir", h.root, "add", srv.URL)
	if code != 1 {
		t.Fatalf("second add exit %d, want 1", code)
	}
	if !strings.Contains(errOut, "Podcast already exists in the current folder") {
		t.Fatalf("unexpected stderr %q", errOut)
	}
}

func TestRun_SyncWithoutRecord(t *testing.T) {
	h := newHarness(t)
	code, out, errOut := h.run("--dir", h.root, "sync")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if out != "" {
		t.Fatalf("unexpected stdout %q", out)
	}
	if !strings.Contains(errOut, `Use "pood add <feed-url>"`) {
		t.Fatalf("unexpected stderr %q", errOut)
	}
}

func TestRun_InfoNetworkFailure(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	code, _, errOut := h.run("info", srv.URL)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(errOut, "Could not download the feed") {
		t.Fatalf("unexpected stderr %q", errOut)
	}
}

func TestRun_Info(t *testing.T) {
	h := newHarness(t)
	feed := &feedServer{}
	feed.set("Ep1", "Ep2")
	srv := httptest.NewServer(feed)
	defer srv.Close()

	code, out, errOut := h.run("info", srv.URL)
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if !strings.HasPrefix(out, "Go Time\nWeekly\n    + Ep1\n") {
		t.Fatalf("unexpected info output %q", out)
	}
}
