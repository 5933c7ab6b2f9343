package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Canonicalize maps equivalent spellings of a service endpoint to one form:
//   - Scheme and host are lowercased
//   - Trailing slashes are removed from the path (except root "/")
//   - Fragment and query are dropped
//   - Default ports are omitted (:80 for http, :443 for https)
//
// The input is not mutated and Canonicalize(Canonicalize(u)) == Canonicalize(u).
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = strings.ToLower(canonical.Scheme)
	canonical.Host = strings.ToLower(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
		canonical.RawPath = ""
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// ParseEndpoint parses an absolute http(s) service URL and returns its
// canonical form. Relative URLs, other schemes and empty hosts are rejected.
func ParseEndpoint(raw string) (url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return url.URL{}, fmt.Errorf("endpoint is empty")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return url.URL{}, fmt.Errorf("parse endpoint %q: %w", raw, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return url.URL{}, fmt.Errorf("endpoint %q: unsupported scheme %q", raw, parsed.Scheme)
	}
	if parsed.Host == "" {
		return url.URL{}, fmt.Errorf("endpoint %q: missing host", raw)
	}
	return Canonicalize(*parsed), nil
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
