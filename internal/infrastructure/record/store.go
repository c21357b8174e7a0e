package record

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/tesso57/pood/internal/domain/podcast"
)

// DefaultName is the record file name inside a podcast directory.
const DefaultName = "pood.txt"

// Store reads and writes the record of one podcast directory.
type Store struct {
	Dir  string
	Name string
}

// NewStore creates a store for the record named name inside dir.
func NewStore(dir, name string) *Store {
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	return new(Store{Dir: dir, Name: name})
}

// Path returns the record file path.
func (s *Store) Path() string {
	return filepath.Join(s.Dir, s.Name)
}

func (s *Store) lockPath() string {
	return filepath.Join(s.Dir, "."+s.Name+".lock")
}

// Exists reports whether the record file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Load reads the record. A missing file is a *DecodeError matching
// podcast.ErrRecordMissing.
func (s *Store) Load() (*podcast.Podcast, error) {
	path := s.Path()
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DecodeError{Path: path, Kind: podcast.ErrRecordMissing}
		}
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	p, err := Decode(f)
	if err != nil {
		var derr *DecodeError
		if errors.As(err, &derr) {
			derr.Path = path
		}
		return nil, err
	}
	return p, nil
}

// Create writes a new record for p, creating the directory when needed.
// An existing record is never overwritten.
func (s *Store) Create(p *podcast.Podcast) error {
	if err := os.MkdirAll(s.Dir, 0750); err != nil {
		return &IOError{Op: "mkdir", Path: s.Dir, Err: err}
	}

	path := s.Path()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return &IOError{Op: "create", Path: path, Kind: podcast.ErrRecordExists}
		}
		return &IOError{Op: "create", Path: path, Err: err}
	}

	w := bufio.NewWriter(f)
	_, err = w.WriteString(Encode(p))
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// lockRetryDelay is how often Update retries a lock held by another process.
const lockRetryDelay = 50 * time.Millisecond

// Update reconciles the record under an exclusive lock. It waits for the
// lock until ctx is done, reloads the record, passes it to fn and appends the
// episodes fn returns. The returned podcast is the record after the append.
// A missing record fails before fn is called.
func (s *Store) Update(ctx context.Context, fn func(stored *podcast.Podcast) ([]podcast.Episode, error)) (*podcast.Podcast, error) {
	if !s.Exists() {
		return nil, &DecodeError{Path: s.Path(), Kind: podcast.ErrRecordMissing}
	}

	lock := flock.New(s.lockPath())
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &IOError{Op: "lock", Path: s.Path(), Kind: podcast.ErrRecordBusy, Err: ctxErr}
		}
		return nil, &IOError{Op: "lock", Path: s.lockPath(), Err: err}
	}
	if !locked {
		return nil, &IOError{Op: "lock", Path: s.Path(), Kind: podcast.ErrRecordBusy}
	}
	defer func() { _ = lock.Unlock() }()

	stored, err := s.Load()
	if err != nil {
		return nil, err
	}
	fresh, err := fn(stored)
	if err != nil {
		return nil, err
	}
	if err := s.append(fresh); err != nil {
		return nil, err
	}
	stored.Merge(fresh)
	return stored, nil
}

// append adds episode blocks to the end of the record in the order given.
// The caller holds the lock.
func (s *Store) append(episodes []podcast.Episode) error {
	if len(episodes) == 0 {
		return nil
	}

	path := s.Path()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &IOError{Op: "append", Path: path, Kind: podcast.ErrRecordMissing}
		}
		return &IOError{Op: "append", Path: path, Err: err}
	}

	var b strings.Builder
	for _, ep := range episodes {
		b.WriteString(EncodeEpisode(ep))
	}
	_, err = f.WriteString(b.String())
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &IOError{Op: "append", Path: path, Err: err}
	}
	return nil
}
