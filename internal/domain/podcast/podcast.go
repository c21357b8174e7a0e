// Package podcast defines the core podcast models and episode reconciliation.
package podcast

// Episode represents a single feed item.
// Dates and durations are kept in the feed's own text format.
type Episode struct {
	Title        string
	Description  string
	EnclosureURL string
	PublishDate  string
	Duration     string
}

// Podcast represents a parsed or stored feed.
// Episodes are ordered oldest-first.
type Podcast struct {
	Title       string
	Description string
	FeedURL     string
	Episodes    []Episode
}

// Titles returns the episode titles in order.
func (p *Podcast) Titles() []string {
	if p == nil {
		return nil
	}
	titles := make([]string, len(p.Episodes))
	for i, ep := range p.Episodes {
		titles[i] = ep.Title
	}
	return titles
}
