package podcast

import (
	"fmt"
	"strings"
)

// KeyFunc derives the identity used to decide whether two episodes are the same.
type KeyFunc func(Episode) string

// Identity names accepted by ParseIdentity.
const (
	IdentityTitle     = "title"
	IdentityTitleDate = "title+date"
)

// TitleKey identifies an episode by its exact title.
// Untitled episodes all share the empty key.
func TitleKey(e Episode) string {
	return e.Title
}

// TitleDateKey identifies an episode by title and publish date together.
func TitleDateKey(e Episode) string {
	return e.Title + "\x00" + e.PublishDate
}

// ParseIdentity returns the KeyFunc for a configured identity name.
// An empty name selects TitleKey.
func ParseIdentity(name string) (KeyFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", IdentityTitle:
		return TitleKey, nil
	case IdentityTitleDate:
		return TitleDateKey, nil
	default:
		return nil, fmt.Errorf("unknown episode identity %q (want %q or %q)", name, IdentityTitle, IdentityTitleDate)
	}
}
