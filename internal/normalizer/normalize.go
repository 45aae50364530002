package normalizer

import (
	"errors"
	"net/url"
	"strings"
)

// NormalizeURL returns the canonical form of a source URL, used to decide whether two
// registry entries name the same document. The scheme and host are lowercased, the
// fragment is dropped and a missing scheme defaults to http.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", errors.New("input URL is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}

	// url.Parse treats "example.com/path" as a path, so re-parse with a scheme.
	if u.Scheme == "" {
		u, err = url.Parse("http://" + trimmed)
		if err != nil {
			return "", err
		}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}
