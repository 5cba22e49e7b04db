package location

import (
	"fmt"
	"net/url"
	"sync"
)

// ParamGist is the single query parameter driving deep links.
const ParamGist = "gist"

// Sync owns the navigable location and its history. It never fetches
// anything itself; the intake controller reacts to identifiers it reads or
// writes here. The top of the history stack is the current location.
type Sync struct {
	mu      sync.Mutex
	base    url.URL
	entries []url.URL
}

// NewSync starts the history at current, or at the base URL when current is
// empty. base must be an absolute URL; its query is discarded.
func NewSync(base, current string) (*Sync, error) {
	b, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !b.IsAbs() {
		return nil, fmt.Errorf("base URL %q is not absolute", base)
	}
	b.RawQuery = ""
	b.Fragment = ""

	first := *b
	if current != "" {
		c, err := url.Parse(current)
		if err != nil {
			return nil, fmt.Errorf("parsing current URL: %w", err)
		}
		first = *c
	}
	return &Sync{base: *b, entries: []url.URL{first}}, nil
}

// Current returns the location at the top of the history.
func (s *Sync) Current() url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[len(s.entries)-1]
}

// CurrentID reads the report identifier from the current location, or ""
// when none is set.
func (s *Sync) CurrentID() string {
	u := s.Current()
	return u.Query().Get(ParamGist)
}

// PushID adds a new history entry carrying the identifier. Used when the
// user persists a new artifact, so the previous location stays reachable.
func (s *Sync) PushID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.base
	q := url.Values{}
	q.Set(ParamGist, id)
	u.RawQuery = q.Encode()
	s.entries = append(s.entries, u)
}

// ReplaceClear replaces the current entry with the bare base URL. Used when
// a local report is shown, so a stale identifier does not linger in
// history.
func (s *Sync) ReplaceClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[len(s.entries)-1] = s.base
}

// Depth reports the number of history entries.
func (s *Sync) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
