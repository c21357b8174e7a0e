// Package usecase contains application-level services.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tesso57/pood/internal/domain/activity"
	"github.com/tesso57/pood/internal/domain/podcast"
)

// FeedLoader fetches and parses a live feed.
type FeedLoader interface {
	Load(ctx context.Context, url string) (*podcast.Podcast, error)
}

// RecordStore abstracts the record file of one podcast directory.
// Update holds the record exclusively from reload to append and returns the
// record as written.
type RecordStore interface {
	Path() string
	Create(p *podcast.Podcast) error
	Update(ctx context.Context, fn func(stored *podcast.Podcast) ([]podcast.Episode, error)) (*podcast.Podcast, error)
}

// RecordOpener binds a RecordStore to a podcast directory.
type RecordOpener func(dir string) RecordStore

// Journal abstracts the run history.
type Journal interface {
	Record(ctx context.Context, e activity.Entry) error
	Recent(ctx context.Context, limit int) ([]activity.Entry, error)
	LastSync(ctx context.Context, feedURL string) (*activity.Entry, error)
}

// PodcastService coordinates feeds, local records and the journal.
type PodcastService struct {
	Feeds   FeedLoader
	Records RecordOpener
	Journal Journal
	Key     podcast.KeyFunc
	Logger  *slog.Logger
	Now     func() time.Time
}

// NewPodcastService constructs a PodcastService. journal may be nil.
func NewPodcastService(feeds FeedLoader, records RecordOpener, journal Journal, key podcast.KeyFunc, logger *slog.Logger) PodcastService {
	return PodcastService{
		Feeds:   feeds,
		Records: records,
		Journal: journal,
		Key:     key,
		Logger:  logger,
		Now:     time.Now,
	}
}

// AddOptions tunes Add.
type AddOptions struct {
	// Root is the directory the podcast directory is created in.
	Root string
	// HeaderOnly writes the record without the current episodes.
	HeaderOnly bool
}

// AddResult describes a newly created record.
type AddResult struct {
	Podcast    *podcast.Podcast
	Dir        string
	RecordPath string
	Episodes   int
}

// SyncResult describes one reconciliation run.
type SyncResult struct {
	Title      string
	FeedURL    string
	RecordPath string
	New        []podcast.Episode
	Count      int
	// Recorded is the number of episodes in the record after the run.
	Recorded int
	At       time.Time
	// PreviousSync is zero when the journal knows no earlier sync.
	PreviousSync time.Time
}

// Info fetches a feed without touching any record.
func (s PodcastService) Info(ctx context.Context, url string) (*podcast.Podcast, error) {
	trimmed, err := validateFeedURL(url)
	if err != nil {
		return nil, err
	}
	return s.Feeds.Load(ctx, trimmed)
}

// Add fetches a feed and writes its initial record into a directory named
// after the podcast title.
func (s PodcastService) Add(ctx context.Context, url string, opts AddOptions) (*AddResult, error) {
	trimmed, err := validateFeedURL(url)
	if err != nil {
		return nil, err
	}

	live, err := s.Feeds.Load(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	dir := filepath.Join(root, podcast.DirName(live.Title))
	store := s.Records(dir)

	initial := &podcast.Podcast{
		Title:       live.Title,
		Description: live.Description,
		FeedURL:     trimmed,
	}
	if !opts.HeaderOnly {
		initial.Episodes = live.Episodes
	}
	if err := store.Create(initial); err != nil {
		return nil, fmt.Errorf("add %s: %w", live.Title, err)
	}

	s.logger().Info("podcast added", "title", live.Title, "dir", dir, "episodes", len(initial.Episodes))
	s.record(ctx, activity.Entry{
		Action:       activity.ActionAdd,
		PodcastTitle: live.Title,
		FeedURL:      trimmed,
		Dir:          absDir(dir),
		NewEpisodes:  len(initial.Episodes),
	})

	return &AddResult{
		Podcast:    live,
		Dir:        dir,
		RecordPath: store.Path(),
		Episodes:   len(initial.Episodes),
	}, nil
}

// Sync reconciles the record in dir against its live feed and appends the
// episodes it has not seen. The record stays locked from reload to append, so
// overlapping runs never store an episode twice. A missing record fails
// before any fetch.
func (s PodcastService) Sync(ctx context.Context, dir string) (*SyncResult, error) {
	store := s.Records(dir)

	var fresh []podcast.Episode
	updated, err := store.Update(ctx, func(stored *podcast.Podcast) ([]podcast.Episode, error) {
		if strings.TrimSpace(stored.FeedURL) == "" {
			return nil, fmt.Errorf("%s: %w: no feed url", store.Path(), podcast.ErrRecordMalformed)
		}
		live, err := s.Feeds.Load(ctx, stored.FeedURL)
		if err != nil {
			return nil, err
		}
		fresh, _ = podcast.ReconcileBy(s.Key, stored.Episodes, live.Episodes)
		s.logger().Debug("reconciled", "feed_url", stored.FeedURL, "stored", len(stored.Episodes), "live", len(live.Episodes), "new", len(fresh))
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	res := &SyncResult{
		Title:        updated.Title,
		FeedURL:      updated.FeedURL,
		RecordPath:   store.Path(),
		New:          fresh,
		Count:        len(fresh),
		Recorded:     len(updated.Episodes),
		At:           s.now(),
		PreviousSync: s.lastSync(ctx, updated.FeedURL),
	}
	s.record(ctx, activity.Entry{
		Action:       activity.ActionSync,
		PodcastTitle: res.Title,
		FeedURL:      res.FeedURL,
		Dir:          absDir(dir),
		NewEpisodes:  res.Count,
		At:           res.At,
	})
	return res, nil
}

// History returns the most recent journal entries, newest first.
func (s PodcastService) History(ctx context.Context, limit int) ([]activity.Entry, error) {
	if s.Journal == nil {
		return nil, errors.New("journal is not available")
	}
	return s.Journal.Recent(ctx, limit)
}

func (s PodcastService) record(ctx context.Context, e activity.Entry) {
	if s.Journal == nil {
		return
	}
	if e.At.IsZero() {
		e.At = s.now()
	}
	if err := s.Journal.Record(ctx, e); err != nil {
		s.logger().Warn("journal write failed", "action", e.Action, "feed_url", e.FeedURL, "err", err)
	}
}

func (s PodcastService) lastSync(ctx context.Context, feedURL string) time.Time {
	if s.Journal == nil {
		return time.Time{}
	}
	last, err := s.Journal.LastSync(ctx, feedURL)
	if err != nil {
		s.logger().Warn("journal read failed", "feed_url", feedURL, "err", err)
		return time.Time{}
	}
	if last == nil {
		return time.Time{}
	}
	return last.At
}

func (s PodcastService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s PodcastService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func absDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

func validateFeedURL(url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", fmt.Errorf("feed url is empty")
	}
	if strings.ContainsAny(trimmed, " \t\r\n") {
		return "", fmt.Errorf("feed url contains whitespace")
	}
	return trimmed, nil
}
