// Package urlutils validates and resolves site URLs.
package urlutils

import (
	"fmt"
	"net/url"
)

// IsValidURL reports whether urlStr is an absolute URL with a scheme and host
func IsValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// ResolveURL resolves ref against baseURL. Absolute refs are returned unchanged.
func ResolveURL(baseURL, ref string) (string, error) {
	rel, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	if rel.IsAbs() {
		return ref, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	return base.ResolveReference(rel).String(), nil
}
