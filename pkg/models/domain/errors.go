package domain

import "errors"

// Intake error taxonomy. Every failing channel or gate wraps one of these
// sentinels so callers can classify with errors.Is without depending on the
// failing component.
var (
	// ErrParse marks content that is not valid JSON.
	ErrParse = errors.New("report content is not valid JSON")
	// ErrSchema marks a payload without the required producer-version marker.
	ErrSchema = errors.New("report is missing the producer version marker")
	// ErrOrigin marks a URL that is not from the trusted report host or
	// carries no extractable identifier.
	ErrOrigin = errors.New("URL is not a recognized report location")
	// ErrFetch marks a remote store failure.
	ErrFetch = errors.New("remote report store request failed")
	// ErrRender marks a rendering failure. This is the only intake error
	// that propagates to the caller; the document container is reset first.
	ErrRender = errors.New("report rendering failed")
)
