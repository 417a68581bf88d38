package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL reduces a URL to its dedup identity: scheme, host and decoded
// path. Scheme and host are lowercased, default ports are removed, and the
// query and fragment are dropped.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("parse url: %q is not absolute", rawURL)
	}

	// Lowercase scheme and host
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	// Remove default ports
	if u.Scheme == "http" && strings.HasSuffix(u.Host, ":80") {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" && strings.HasSuffix(u.Host, ":443") {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	// u.Path is already percent-decoded.
	return u.Scheme + "://" + u.Host + u.Path, nil
}

// LinkRules decides which discovered links may enter the frontier.
type LinkRules struct {
	// PathPrefix is the site's canonical article path, e.g. "/wiki/".
	PathPrefix string
	// Excluded lists substrings that disqualify a URL.
	Excluded []string
	domains  *domainMatcher
}

// NewLinkRules builds LinkRules. allowedDomains accepts exact hosts and
// "*.example.org" / ".example.org" suffix patterns; a bare domain also
// matches its subdomains. An empty list allows every host.
func NewLinkRules(pathPrefix string, excluded, allowedDomains []string) LinkRules {
	return LinkRules{
		PathPrefix: pathPrefix,
		Excluded:   append([]string(nil), excluded...),
		domains:    newDomainMatcher(allowedDomains),
	}
}

// Valid reports whether rawURL is an http(s) article URL on an allowed host
// that matches none of the exclusion substrings.
func (r LinkRules) Valid(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	if !r.domains.Matches(u.Hostname()) {
		return false
	}
	if r.PathPrefix != "" && !strings.HasPrefix(u.Path, r.PathPrefix) {
		return false
	}
	for _, pattern := range r.Excluded {
		if pattern == "" {
			continue
		}
		if strings.Contains(rawURL, pattern) {
			return false
		}
		// Exclusions are usually written decoded ("Категория:"), links arrive encoded.
		if strings.Contains(u.Path, pattern) {
			return false
		}
	}
	return true
}
