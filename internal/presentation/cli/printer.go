// Package cli renders command results for the terminal.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/mattn/go-isatty"
	"github.com/tesso57/pood/internal/application/settings"
	"github.com/tesso57/pood/internal/application/usecase"
	"github.com/tesso57/pood/internal/domain/activity"
	"github.com/tesso57/pood/internal/domain/podcast"
)

const (
	episodeIndent = "    + "
	detailIndent  = "          "
)

// Printer writes command output. Colour and width follow the terminal when
// the writer is one; otherwise output is plain and unbounded.
type Printer struct {
	out      io.Writer
	width    int
	colorize bool

	title lipgloss.Style
	added lipgloss.Style
	muted lipgloss.Style
	fail  lipgloss.Style
}

// NewPrinter constructs a Printer for w using the configured theme.
func NewPrinter(w io.Writer, theme settings.ThemeConfig) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		out:      w,
		width:    terminalWidth(w),
		colorize: shouldColorize(w),
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Title)),
		added:    r.NewStyle().Foreground(lipgloss.Color(theme.Added)),
		muted:    r.NewStyle().Foreground(lipgloss.Color(theme.Muted)),
		fail:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// Info prints a podcast with every episode.
func (p *Printer) Info(pod *podcast.Podcast) {
	p.line(p.paint(p.title, pod.Title))
	if desc := PlainText(pod.Description); desc != "" {
		p.line(Truncate(desc, p.width))
	}
	for _, ep := range pod.Episodes {
		p.line(episodeIndent + ep.Title)
		if details := joinNonEmpty(ep.Duration, ep.PublishDate, ep.EnclosureURL); details != "" {
			p.line(detailIndent + p.paint(p.muted, details))
		}
		if desc := PlainText(ep.Description); desc != "" {
			p.line(detailIndent + Truncate(desc, p.width-len(detailIndent)))
		}
	}
}

// Added reports a newly created record.
func (p *Printer) Added(res *usecase.AddResult) {
	p.line(fmt.Sprintf("Added %s in %s (%s recorded)",
		p.paint(p.title, res.Podcast.Title),
		res.Dir,
		english.Plural(res.Episodes, "episode", ""),
	))
}

// Synced reports the outcome of a sync and lists the new episodes.
func (p *Printer) Synced(res *usecase.SyncResult) {
	title := p.paint(p.title, res.Title)
	if res.Count == 0 {
		p.line(fmt.Sprintf("%s: no new episodes", title))
	} else {
		p.line(fmt.Sprintf("%s: %s", title, english.Plural(res.Count, "new episode", "")))
		for _, ep := range res.New {
			p.line(p.paint(p.added, episodeIndent) + ep.Title)
		}
	}

	var recorded, previous string
	if res.Recorded > 0 {
		recorded = english.Plural(res.Recorded, "episode", "") + " recorded"
	}
	if !res.PreviousSync.IsZero() {
		previous = "last synced " + humanize.RelTime(res.PreviousSync, res.At, "ago", "from now")
	}
	if trailer := joinNonEmpty(recorded, previous); trailer != "" {
		p.line(detailIndent + p.paint(p.muted, trailer))
	}
}

// History prints journal entries relative to now.
func (p *Printer) History(entries []activity.Entry, now time.Time) {
	if len(entries) == 0 {
		p.line("No runs recorded yet")
		return
	}
	for _, e := range entries {
		age := humanize.RelTime(e.At, now, "ago", "from now")
		var outcome string
		switch e.Action {
		case activity.ActionAdd:
			outcome = english.Plural(e.NewEpisodes, "episode", "") + " recorded"
		default:
			outcome = fmt.Sprintf("+%d", e.NewEpisodes)
		}
		p.line(fmt.Sprintf("%s  %-4s  %s  %s",
			p.paint(p.muted, fmt.Sprintf("%-16s", age)),
			e.Action,
			e.PodcastTitle,
			outcome,
		))
	}
}

// Error prints a user-facing description of err.
func (p *Printer) Error(err error) {
	p.line(p.paint(p.fail, Describe(err)))
}

func (p *Printer) paint(style lipgloss.Style, s string) string {
	if !p.colorize || s == "" {
		return s
	}
	return style.Render(s)
}

func (p *Printer) line(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(file.Fd()) {
		return 0
	}
	width, _, err := term.GetSize(file.Fd())
	if err != nil || width <= 0 {
		return 0
	}
	return width
}
