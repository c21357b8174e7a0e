package podcast

import "errors"

// Error kinds shared by the feed, record and use case layers.
// Concrete errors wrap one of these so callers can match with errors.Is.
var (
	ErrNetwork         = errors.New("network error")
	ErrFeedMalformed   = errors.New("malformed feed")
	ErrFeedUnsupported = errors.New("unsupported feed format")
	ErrRecordMissing   = errors.New("local record not found")
	ErrRecordMalformed = errors.New("malformed local record")
	ErrRecordExists    = errors.New("local record already exists")
	ErrRecordBusy      = errors.New("local record is locked")
	ErrIO              = errors.New("i/o error")
)
