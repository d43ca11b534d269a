package source

import (
	"errors"
	"fmt"
)

// ErrUnexpectedStatusCode indicates an HTTP response other than 200 OK.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// MissingInputError reports that the source list does not exist. It is the
// only condition that stops a run before any source is fetched.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input list %s not found", e.Path)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// FetchError reports a download or decompression failure for one source.
// Op is "download" or "decompress".
type FetchError struct {
	URL string
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
