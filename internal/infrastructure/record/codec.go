// Package record reads and writes the per-podcast local record file.
//
// A record is a two-line header followed by blank-line separated episode
// blocks:
//
//	title : <podcast title>
//	url   : <feed address>
//
//	title       : <episode title>
//	description : <episode description>
//	url         : <enclosure url>
//	date        : <publish date>
//	duration    : <duration>
//
// Values are written verbatim. A value containing a newline corrupts the file.
package record

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tesso57/pood/internal/domain/podcast"
)

const (
	labelTitle       = "title"
	labelURL         = "url"
	labelDescription = "description"
	labelDate        = "date"
	labelDuration    = "duration"
)

const (
	separator    = " : "
	headerWidth  = len(labelTitle)
	episodeWidth = len(labelDescription)
	maxLineSize  = 1 << 20
)

// EncodeHeader formats the podcast title and feed url lines.
func EncodeHeader(p *podcast.Podcast) string {
	var b strings.Builder
	writeLine(&b, headerWidth, labelTitle, p.Title)
	writeLine(&b, headerWidth, labelURL, p.FeedURL)
	return b.String()
}

// EncodeEpisode formats one episode block, including its leading blank line.
func EncodeEpisode(e podcast.Episode) string {
	var b strings.Builder
	b.WriteByte('\n')
	writeLine(&b, episodeWidth, labelTitle, e.Title)
	writeLine(&b, episodeWidth, labelDescription, e.Description)
	writeLine(&b, episodeWidth, labelURL, e.EnclosureURL)
	writeLine(&b, episodeWidth, labelDate, e.PublishDate)
	writeLine(&b, episodeWidth, labelDuration, e.Duration)
	return b.String()
}

// Encode formats a whole record.
func Encode(p *podcast.Podcast) string {
	var b strings.Builder
	b.WriteString(EncodeHeader(p))
	for _, ep := range p.Episodes {
		b.WriteString(EncodeEpisode(ep))
	}
	return b.String()
}

func writeLine(b *strings.Builder, width int, label, value string) {
	fmt.Fprintf(b, "%-*s%s%s\n", width, label, separator, value)
}

// Decode reads a record. The header must be the first two lines; in episode
// blocks, lines with unknown labels or no separator are skipped.
func Decode(r io.Reader) (*podcast.Podcast, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	p := &podcast.Podcast{Episodes: []podcast.Episode{}}
	lineNo := 0

	header := []struct {
		label string
		dst   *string
	}{
		{labelTitle, &p.Title},
		{labelURL, &p.FeedURL},
	}
	for _, h := range header {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, malformed(lineNo+1, err)
			}
			return nil, malformed(lineNo+1, fmt.Errorf("missing %q header line", h.label))
		}
		lineNo++
		key, value, ok := splitLine(scanner.Text())
		if !ok || key != h.label {
			return nil, malformed(lineNo, fmt.Errorf("expected %q header line", h.label))
		}
		*h.dst = value
	}
	var (
		current podcast.Episode
		filled  bool
	)
	flush := func() {
		if filled {
			p.Episodes = append(p.Episodes, current)
		}
		current = podcast.Episode{}
		filled = false
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, ok := splitLine(line)
		if !ok {
			continue
		}
		switch key {
		case labelTitle:
			current.Title = value
		case labelDescription:
			current.Description = value
		case labelURL:
			current.EnclosureURL = value
		case labelDate:
			current.PublishDate = value
		case labelDuration:
			current.Duration = value
		default:
			continue
		}
		filled = true
	}
	if err := scanner.Err(); err != nil {
		return nil, malformed(lineNo+1, err)
	}
	flush()

	return p, nil
}

// splitLine splits "label : value" on the first separator.
// A line ending in " :" has an empty value.
func splitLine(line string) (key, value string, ok bool) {
	line = strings.TrimSuffix(line, "\r")
	if k, v, found := strings.Cut(line, separator); found {
		return strings.TrimSpace(k), v, true
	}
	if k, found := strings.CutSuffix(line, " :"); found {
		return strings.TrimSpace(k), "", true
	}
	return "", "", false
}

func malformed(line int, err error) error {
	return &DecodeError{Line: line, Kind: podcast.ErrRecordMalformed, Err: err}
}
