package record

import (
	"fmt"

	"github.com/tesso57/pood/internal/domain/podcast"
)

// DecodeError reports a record that is missing or cannot be read back.
// Kind is podcast.ErrRecordMissing or podcast.ErrRecordMalformed.
type DecodeError struct {
	Path string
	Line int
	Kind error
	Err  error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the kind and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IOError reports a failed filesystem operation on a record.
// Kind is podcast.ErrIO unless a more specific kind applies.
type IOError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the kind and the underlying cause.
func (e *IOError) Unwrap() []error {
	kind := e.Kind
	if kind == nil {
		kind = podcast.ErrIO
	}
	if e.Err == nil {
		return []error{kind}
	}
	return []error{kind, e.Err}
}
