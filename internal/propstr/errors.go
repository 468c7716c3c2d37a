package propstr

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrDuplicateDefaultKey = errors.New("default key may only be defined once")
	ErrMalformedSegment    = errors.New("failed to parse key-value pair")
	ErrUnrecognizedToken   = errors.New("unrecognized token")
	ErrPatternMismatch     = errors.New("pattern mismatch")
	ErrMissingField        = errors.New("missing required field")
)

// ParseError describes a failed parse of a single property string.
type ParseError struct {
	// Format names the grammar being parsed, e.g. "qemu-net".
	Format string
	// Segment is the offending comma separated segment, if any.
	Segment string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("%s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("%s: %v: %q", e.Format, e.Err, e.Segment)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Errorf returns a *ParseError for format wrapping err.
func Errorf(format string, err error, segment string) error {
	return &ParseError{Format: format, Segment: segment, Err: err}
}
