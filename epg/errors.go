package epg

import (
	"errors"
	"fmt"
)

var (
	errMalformedTimestamp = errors.New("want YYYYMMDDhhmmss ±hhmm")
	errNoRoot             = errors.New("document has no root element")
	errMultipleRoots      = errors.New("document has more than one root element")
	errTextOutsideRoot    = errors.New("character data outside the root element")
)

// TimestampError reports a start or stop attribute that could not be
// normalized. The attribute keeps its original value.
type TimestampError struct {
	Attr  string
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("normalize %s=%q: %v", e.Attr, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }

// ExtractionError reports a source document that is not well-formed XML.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError reports a merged document that failed the well-formedness
// check. The file is left on disk.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
