package ingest

import (
	"errors"
	"fmt"
)

// ErrNoClient is the one fatal precondition: without a network client no
// retrieval strategy requiring network access can function, so it is raised
// to the caller before any per-URL processing begins.
var ErrNoClient = errors.New("network client not configured")

// ErrUnrecognizedFormat marks inputs matching no known URL pattern that are
// not local paths either.
var ErrUnrecognizedFormat = errors.New("unrecognized URL or path format")

// AccessRestrictedError reports an explicit 401/403 or a detected login wall.
type AccessRestrictedError struct {
	Reason string
}

func (e *AccessRestrictedError) Error() string { return "restricted: " + e.Reason }

// ParseError reports malformed HTML, PDF, or JSON from a remote source.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Format, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
