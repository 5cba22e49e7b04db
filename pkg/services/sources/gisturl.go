package sources

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/perf-tools/report-lens/pkg/models/domain"
)

// gist identifiers are hex strings of at least 5 characters somewhere in
// the URL path.
var gistIDPattern = regexp.MustCompile(`[a-f0-9]{5,}`)

// ParseGistURL checks that rawURL points at the trusted gist host and pulls
// the report identifier out of its path. Any failure wraps domain.ErrOrigin;
// no partial result is returned.
func ParseGistURL(rawURL, trustedHost string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOrigin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", domain.ErrOrigin, u.Scheme)
	}
	if u.Hostname() != trustedHost {
		return "", fmt.Errorf("%w: host %q is not %q", domain.ErrOrigin, u.Hostname(), trustedHost)
	}
	id := gistIDPattern.FindString(u.Path)
	if id == "" {
		return "", fmt.Errorf("%w: no identifier in path %q", domain.ErrOrigin, u.Path)
	}
	return id, nil
}
