package cli

import (
	"errors"

	"github.com/tesso57/pood/internal/domain/podcast"
)

// Describe turns an error into a message for the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, podcast.ErrRecordMissing):
		return `No podcast record found here. Use "pood add <feed-url>" to add a podcast.`
	case errors.Is(err, podcast.ErrRecordExists):
		return "Podcast already exists in the current folder"
	case errors.Is(err, podcast.ErrRecordBusy):
		return "Another pood process is updating this podcast, try again shortly"
	case errors.Is(err, podcast.ErrRecordMalformed):
		return "The podcast record is damaged: " + err.Error()
	case errors.Is(err, podcast.ErrNetwork):
		return "Could not download the feed: " + err.Error()
	case errors.Is(err, podcast.ErrFeedUnsupported):
		return "This feed format is not supported: " + err.Error()
	case errors.Is(err, podcast.ErrFeedMalformed):
		return "The feed could not be parsed: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
