package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// PathParam extracts a named path parameter from the request URL, using Go
// 1.22+ ServeMux pattern matching (e.g. "/{identifier...}").
func PathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// ParseBoolQuery parses a boolean query parameter, returning defaultVal
// when the parameter is absent.
func ParseBoolQuery(r *http.Request, key string, defaultVal bool) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: must be true or false", key)
	}
	return b, nil
}
