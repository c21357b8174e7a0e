package feed

import (
	"fmt"

	"github.com/tesso57/pood/internal/domain/podcast"
)

// NetworkError reports a failed feed download.
// StatusCode is set when the server answered with a non-2xx status.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes podcast.ErrNetwork and the transport cause.
func (e *NetworkError) Unwrap() []error {
	return joinCause(podcast.ErrNetwork, e.Err)
}

// ParseError reports a feed document that could not be turned into a podcast.
// Kind is podcast.ErrFeedMalformed or podcast.ErrFeedUnsupported.
type ParseError struct {
	Kind error
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes the kind and the underlying decoder error.
func (e *ParseError) Unwrap() []error {
	return joinCause(e.Kind, e.Err)
}

func malformed(err error) error {
	return &ParseError{Kind: podcast.ErrFeedMalformed, Err: err}
}

func malformedf(format string, args ...any) error {
	return malformed(fmt.Errorf(format, args...))
}

func unsupported(format string, args ...any) error {
	return &ParseError{Kind: podcast.ErrFeedUnsupported, Err: fmt.Errorf(format, args...)}
}

func joinCause(kind, cause error) []error {
	if cause == nil {
		return []error{kind}
	}
	return []error{kind, cause}
}
