package cli

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/x/ansi"
)

// SingleLine collapses whitespace into single spaces.
func SingleLine(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// Truncate trims a string to the given width with an ellipsis.
// A non-positive width leaves the text untouched.
func Truncate(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Truncate(text, width, "...")
}

// PlainText drops markup from a feed description and folds it onto one line.
func PlainText(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return SingleLine(text)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return SingleLine(text)
	}
	return SingleLine(doc.Text())
}
