// Package activity defines the record of add and sync runs.
package activity

import "time"

// Actions recorded for a run.
const (
	ActionAdd  = "add"
	ActionSync = "sync"
)

// Entry is one recorded run.
type Entry struct {
	ID           int64
	Action       string
	PodcastTitle string
	FeedURL      string
	Dir          string
	NewEpisodes  int
	At           time.Time
}
