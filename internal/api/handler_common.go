package api

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/CDLUC3/rslv-go/internal/normalize"
)

// cleanedFromRequest recovers the identifier a client intended to resolve
// from the raw request line, stripping routePrefix from the escaped path
// before handing it to normalize.FromRequestURL. routePrefix must match
// the mux pattern's literal prefix ("/" for the resolve route, "/.info/"
// for the introspection route) so the remainder is exactly the
// route-extracted identifier tail.
//
// r.URL.EscapedPath() (not PathValue, which is percent-decoded by the
// router) and r.RequestURI (the verbatim request-target off the wire) are
// used so percent-decoding happens exactly where the normalizer expects
// it and nowhere else.
func cleanedFromRequest(r *http.Request, routePrefix string, servicePattern *regexp.Regexp) normalize.Cleaned {
	tail := strings.TrimPrefix(r.URL.EscapedPath(), routePrefix)
	return normalize.FromRequestURL(r.RequestURI, tail, servicePattern)
}

// prefersHTML reports whether the request's Accept header favors
// text/html over application/json.
func prefersHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}
	htmlIdx := strings.Index(accept, "text/html")
	jsonIdx := strings.Index(accept, "application/json")
	if htmlIdx < 0 {
		return false
	}
	if jsonIdx < 0 {
		return true
	}
	return htmlIdx < jsonIdx
}

func writeInvalidArgument(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "validation", message)
}

func parseBoolQueryOrWriteInvalid(w http.ResponseWriter, r *http.Request, key string, defaultVal bool) (bool, bool) {
	v, err := ParseBoolQuery(r, key, defaultVal)
	if err != nil {
		writeInvalidArgument(w, err.Error())
		return false, false
	}
	return v, true
}
