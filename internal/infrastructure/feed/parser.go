package feed

import (
	"encoding/xml"
	"io"
	"slices"
	"strings"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"

	"github.com/tesso57/pood/internal/domain/podcast"
)

// scope tells whether the parser is inside an item boundary.
type scope int

const (
	outsideItem scope = iota
	inItem
)

// field is the value the next text payload is collected for.
type field int

const (
	fieldNone field = iota
	fieldTitle
	fieldDescription
	fieldDate
	fieldDuration
)

// fieldTags maps element local names to the field their text fills.
// Namespace prefixes are dropped, so itunes:summary and itunes:duration match.
var fieldTags = map[string]field{
	"title":       fieldTitle,
	"description": fieldDescription,
	"summary":     fieldDescription,
	"pubDate":     fieldDate,
	"published":   fieldDate,
	"duration":    fieldDuration,
}

func isItemTag(name string) bool {
	return name == "item" || name == "entry"
}

func isContainerTag(name string) bool {
	return name == "channel" || name == "feed"
}

// Parse reads a feed document as a stream of XML events and returns the
// podcast it describes with episodes ordered oldest-first.
// Any syntax error aborts parsing and no partial podcast is returned.
func Parse(r io.Reader) (*podcast.Podcast, error) {
	p := xpp.NewXMLPullParser(r, true, charset.NewReaderLabel)
	m := &machine{episodes: []podcast.Episode{}}

	for {
		event, err := p.NextToken()
		if err != nil {
			return nil, malformed(err)
		}

		switch event {
		case xpp.StartTag:
			if err := m.open(p.Name, p.Attrs); err != nil {
				return nil, err
			}
		case xpp.EndTag:
			m.close(p.Name)
		case xpp.Text:
			m.characters(p.Text)
		case xpp.EndDocument:
			return m.finish()
		}
	}
}

// machine holds the parser state between events.
// The in-progress episode is only appended to episodes when its item closes.
// Podcast-level fields are only taken from direct children of the first
// channel or feed element, so <image><title> and similar never leak into them.
type machine struct {
	title       string
	description string
	episodes    []podcast.Episode

	scope     scope
	current   podcast.Episode
	awaiting  field
	text      strings.Builder
	sawRoot   bool
	depth     int
	container int
	fieldAt   int
}

func (m *machine) open(name string, attrs []xml.Attr) error {
	m.sawRoot = true
	m.flush()
	m.depth++
	if m.container == 0 && isContainerTag(name) {
		m.container = m.depth
	}

	switch {
	case isItemTag(name):
		if m.scope == inItem {
			return malformedf("nested <%s> inside an item", name)
		}
		m.scope = inItem
		m.current = podcast.Episode{}
		return nil
	case name == "enclosure":
		if url, ok := attr(attrs, "url"); ok {
			m.enclosure(url)
		}
	case name == "link":
		// Atom enclosures: <link rel="enclosure" href="..."/>
		if rel, _ := attr(attrs, "rel"); rel == "enclosure" {
			if href, ok := attr(attrs, "href"); ok {
				m.enclosure(href)
			}
		}
	}

	m.awaiting = fieldTags[name]
	m.fieldAt = m.depth
	return nil
}

func (m *machine) close(name string) {
	m.flush()
	m.depth--
	if isItemTag(name) && m.scope == inItem {
		m.episodes = append(m.episodes, m.current)
		m.current = podcast.Episode{}
		m.scope = outsideItem
	}
}

func (m *machine) characters(text string) {
	if m.awaiting == fieldNone {
		return
	}
	m.text.WriteString(text)
}

// flush assigns the collected text to the awaited field and stops collecting.
// Blank payloads never overwrite an earlier value.
func (m *machine) flush() {
	f := m.awaiting
	m.awaiting = fieldNone
	if f == fieldNone {
		return
	}
	value := strings.TrimSpace(m.text.String())
	m.text.Reset()
	if value == "" {
		return
	}

	if m.scope == inItem {
		switch f {
		case fieldTitle:
			m.current.Title = value
		case fieldDescription:
			m.current.Description = value
		case fieldDate:
			m.current.PublishDate = value
		case fieldDuration:
			m.current.Duration = value
		}
		return
	}

	// Dates and durations outside an item have no owner.
	if m.container == 0 || m.fieldAt != m.container+1 {
		return
	}
	switch f {
	case fieldTitle:
		m.title = value
	case fieldDescription:
		m.description = value
	}
}

// enclosure records the first enclosure of the current item.
func (m *machine) enclosure(url string) {
	if m.scope != inItem || m.current.EnclosureURL != "" {
		return
	}
	m.current.EnclosureURL = strings.TrimSpace(url)
}

func (m *machine) finish() (*podcast.Podcast, error) {
	if !m.sawRoot {
		return nil, malformedf("document has no root element")
	}
	slices.Reverse(m.episodes)
	return new(podcast.Podcast{
		Title:       m.title,
		Description: m.description,
		Episodes:    m.episodes,
	}), nil
}

// attr returns the value of the first attribute with the given local name.
func attr(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
