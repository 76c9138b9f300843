package api

import (
	"errors"
	"net/http"

	"github.com/CDLUC3/rslv-go/internal/catalog"
	"github.com/CDLUC3/rslv-go/internal/config"
	"github.com/CDLUC3/rslv-go/internal/model"
	"github.com/CDLUC3/rslv-go/internal/resolver"
)

// partsResponse mirrors model.ParsedIdentifier's fields under their wire
// names (pid, scheme, content, prefix, value, suffix). A dedicated response
// type keeps the wire shape stable even if the model type grows fields the
// HTTP surface shouldn't expose.
type partsResponse struct {
	PID     string `json:"pid"`
	Scheme  string `json:"scheme"`
	Content string `json:"content"`
	Prefix  string `json:"prefix"`
	Value   string `json:"value"`
	Suffix  string `json:"suffix"`
}

func newPartsResponse(p model.ParsedIdentifier) partsResponse {
	return partsResponse{
		PID:     p.PID,
		Scheme:  p.Scheme,
		Content: p.Content,
		Prefix:  p.Prefix,
		Value:   p.Value,
		Suffix:  p.Suffix,
	}
}

// definitionResponse is the introspection view of a matched PidDefinition.
// Prefixes/Values are populated only when the match didn't pin down that
// level (bare scheme or bare prefix), letting a client browse the catalog.
type definitionResponse struct {
	Uniq       string   `json:"uniq"`
	Scheme     string   `json:"scheme"`
	Prefix     string   `json:"prefix"`
	Value      string   `json:"value"`
	Target     *string  `json:"target,omitempty"`
	Canonical  string   `json:"canonical"`
	SynonymFor *string  `json:"synonym_for,omitempty"`
	HTTPCode   int      `json:"http_code"`
	Prefixes   []string `json:"prefixes,omitempty"`
	Values     []string `json:"values,omitempty"`
}

func newDefinitionResponse(def *model.PidDefinition, prefixes, values []string) *definitionResponse {
	return &definitionResponse{
		Uniq:       def.Uniq,
		Scheme:     def.Scheme,
		Prefix:     def.Prefix,
		Value:      def.Value,
		Target:     def.Target,
		Canonical:  def.Canonical,
		SynonymFor: def.SynonymFor,
		HTTPCode:   def.HTTPCode,
		Prefixes:   prefixes,
		Values:     values,
	}
}

// introspectResponse is the full body of a /.info/{identifier} response
// and the debugging body attached to a resolve-route redirect.
type introspectResponse struct {
	partsResponse
	Target     string              `json:"target"`
	Canonical  string              `json:"canonical"`
	StatusCode int                 `json:"status_code"`
	Properties map[string]any      `json:"properties,omitempty"`
	Definition *definitionResponse `json:"definition,omitempty"`
}

// notFoundResponse is the 404 body for both routes: the parsed parts plus
// a human-readable error naming the original identifier that failed to match.
type notFoundResponse struct {
	partsResponse
	Error string `json:"error"`
}

func writeNotFound(w http.ResponseWriter, status int, parts model.ParsedIdentifier, original string) {
	WriteJSON(w, status, notFoundResponse{
		partsResponse: newPartsResponse(parts),
		Error:         "No match was found for " + original,
	})
}

// writeIntrospection runs resolver.Info against identifier and writes the
// 200 introspection body (HTML or JSON per Accept) or a 404. Shared by the
// dedicated /.info/{identifier...} route and the auto/explicit
// introspection branch of the resolve route.
func writeIntrospection(w http.ResponseWriter, r *http.Request, cat *catalog.Catalog, identifier, original string) {
	res, err := resolver.Info(cat, identifier, r.Method)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Definition == nil {
		writeNotFound(w, http.StatusNotFound, res.Parts, original)
		return
	}

	body := introspectResponse{
		partsResponse: newPartsResponse(res.Parts),
		Target:        res.Target,
		Canonical:     res.Canonical,
		StatusCode:    res.StatusCode,
		Properties:    res.Definition.Properties,
		Definition:    newDefinitionResponse(res.Definition, res.Prefixes, res.Values),
	}

	if meta, err := cat.GetMetadata(); err == nil {
		w.Header().Set("ETag", computeETag(res.Definition, meta))
	}

	// The HTTP status is 200; body.StatusCode reports the redirect status
	// the matched definition would produce for this method.
	if prefersHTML(r) {
		renderIntrospectHTML(w, http.StatusOK, body)
		return
	}
	WriteJSON(w, http.StatusOK, body)
}

// HandleInfo handles GET/HEAD/POST/PUT/DELETE /.info/{identifier...}:
// introspection, never a redirect.
func HandleInfo(cat *catalog.Catalog, cfg *config.EnvConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cleaned := cleanedFromRequest(r, "/.info/", cfg.ServicePattern)
		writeIntrospection(w, r, cat, cleaned.Identifier, cleaned.Original)
	}
}

// serviceSchemeEntry is one row of /.info's top-level scheme listing.
type serviceSchemeEntry struct {
	Scheme string `json:"scheme"`
}

// serviceInfoResponse is the body of GET /.info (no identifier segment).
type serviceInfoResponse struct {
	About   *model.CatalogMetadata `json:"about"`
	API     string                 `json:"api"`
	Schemes []serviceSchemeEntry   `json:"schemes"`
}

// HandleServiceInfo handles GET/HEAD /.info: the service-wide metadata and
// scheme listing. Query parameter valid (default true) restricts the
// scheme listing to schemes with a usable target or synonym_for.
func HandleServiceInfo(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		validOnly, ok := parseBoolQueryOrWriteInvalid(w, r, "valid", true)
		if !ok {
			return
		}

		// A catalog that was migrated but never initialized has no
		// metadata row; "about" is then null.
		meta, err := cat.GetMetadata()
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			writeServiceError(w, err)
			return
		}

		var schemes []string
		if validOnly {
			schemes, err = cat.ListValidSchemes()
		} else {
			schemes, err = cat.ListSchemes()
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		entries := make([]serviceSchemeEntry, 0, len(schemes))
		for _, s := range schemes {
			entries = append(entries, serviceSchemeEntry{Scheme: s})
		}

		WriteJSON(w, http.StatusOK, serviceInfoResponse{
			About:   meta,
			API:     "/api",
			Schemes: entries,
		})
	}
}
