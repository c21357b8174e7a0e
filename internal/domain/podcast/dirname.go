package podcast

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackDirName = "podcast"

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '‘', '’', '`':
		return true
	}
	return false
}

func dirRune(r rune) rune {
	if unicode.IsSpace(r) || r == '/' || r == '\\' {
		return '_'
	}
	return r
}

// DirName turns a podcast title into a directory name: spaces and path
// separators become underscores and apostrophes are removed.
func DirName(title string) string {
	t := transform.Chain(
		norm.NFC,
		runes.Remove(runes.Predicate(isApostrophe)),
		runes.Map(dirRune),
	)
	name, _, err := transform.String(t, strings.TrimSpace(title))
	if err != nil || strings.Trim(name, "._") == "" {
		return fallbackDirName
	}
	return name
}
