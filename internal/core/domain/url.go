package domain

import (
	"net/url"
	"strings"
)

// defaultScheme is prepended to input that carries no HTTP(S) scheme.
const defaultScheme = "https://"

// NormalizeURL turns user input into an absolute HTTP(S) URL.
//
// Input without an http:// or https:// prefix gets https:// prepended.
// The result must parse with a host. No network access happens here.
func NormalizeURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", &InvalidURLError{Input: raw, Reason: "url is empty"}
	}

	if !hasHTTPScheme(value) {
		if strings.Contains(value, "://") {
			return "", &InvalidURLError{Input: raw, Reason: "scheme must be http or https"}
		}
		value = defaultScheme + value
	}

	u, err := url.Parse(value)
	if err != nil {
		return "", &InvalidURLError{Input: raw, Reason: "url is malformed"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &InvalidURLError{Input: raw, Reason: "scheme must be http or https"}
	}
	if u.Hostname() == "" {
		return "", &InvalidURLError{Input: raw, Reason: "url has no host"}
	}

	return value, nil
}

// Hostname returns the host part of an absolute URL without the port,
// or the input itself when it cannot be parsed.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}

func hasHTTPScheme(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
