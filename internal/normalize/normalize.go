// Package normalize recovers the raw identifier string a caller intended
// to resolve from the matched path segment and the full request URL, and
// detects the legacy "?"/"??"/"?info" introspection-trigger suffixes that
// only show up on the undecoded URL.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

// introspectionSuffixes is checked in this order: the longer suffixes must
// be tested before the shorter ones they contain ("?info" before "?").
var introspectionSuffixes = []string{"??", "?info", "?"}

// Cleaned is the recovered identifier plus the flags the resolver needs to
// decide between redirect, introspection, and not-found handling.
type Cleaned struct {
	// Original is the requested identifier as it appears in the
	// percent-decoded request URL, before any introspection suffix is
	// stripped.
	Original string
	// Identifier is Original with any recognized introspection suffix
	// removed, ready to hand to the splitter.
	Identifier string
	// IsIntrospection is true if the raw URL ended with "?", "??", or "?info".
	IsIntrospection bool
	// HasServiceURL is true if servicePattern matched and was stripped.
	HasServiceURL bool
}

// FromRequestURL reconstructs a Cleaned from the full raw request URL and
// the identifier segment of the still-escaped request path (the path after
// the route's literal prefix); both are percent-decoded here.
// servicePattern, if non-nil, is a regexp matching a
// self-referential URL prefix (e.g. "https://example.org/") that should be
// stripped from the identifier before matching, to recover the identifier
// embedded in a URL a client pasted back into the resolver.
func FromRequestURL(rawRequestURL, routedIdentifier string, servicePattern *regexp.Regexp) Cleaned {
	cleaned, err := url.QueryUnescape(routedIdentifier)
	if err != nil {
		cleaned = routedIdentifier
	}
	cleaned = strings.TrimLeft(cleaned, " /:.;,")

	hasServiceURL := false
	if servicePattern != nil {
		if stripped, matched := replaceFirst(servicePattern, cleaned); matched {
			cleaned = stripped
			hasServiceURL = true
		}
	}

	requestURL, err := url.QueryUnescape(rawRequestURL)
	if err != nil {
		requestURL = rawRequestURL
	}

	requestedIdentifier := cleaned
	if idx := strings.Index(requestURL, cleaned); idx >= 0 {
		requestedIdentifier = requestURL[idx:]
	}
	original := requestedIdentifier

	isIntrospection := false
	for _, suffix := range introspectionSuffixes {
		if strings.HasSuffix(requestURL, suffix) {
			if strings.HasSuffix(requestedIdentifier, suffix) {
				requestedIdentifier = requestedIdentifier[:len(requestedIdentifier)-len(suffix)]
			}
			isIntrospection = true
			break
		}
	}

	return Cleaned{
		Original:        original,
		Identifier:      requestedIdentifier,
		IsIntrospection: isIntrospection,
		HasServiceURL:   hasServiceURL,
	}
}

// replaceFirst replaces only the first regexp match in s with "", reporting
// whether a match was found. Go's regexp package has no built-in "replace N
// occurrences" (unlike Python's re.subn(count=1)), so this does it by hand.
func replaceFirst(re *regexp.Regexp, s string) (string, bool) {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s, false
	}
	return s[:loc[0]] + s[loc[1]:], true
}
