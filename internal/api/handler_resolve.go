package api

import (
	"log"
	"net/http"

	"github.com/CDLUC3/rslv-go/internal/catalog"
	"github.com/CDLUC3/rslv-go/internal/config"
	"github.com/CDLUC3/rslv-go/internal/resolver"
)

// resolveResponse is the body accompanying a redirect, provided even on a
// 30x response to aid a client or operator debugging why an identifier
// landed where it did.
type resolveResponse struct {
	partsResponse
	Target     string `json:"target"`
	Canonical  string `json:"canonical"`
	StatusCode int    `json:"status_code"`
}

// HandleResolve handles GET/HEAD/POST/PUT/DELETE /{identifier...}: the
// primary redirect route. An introspection trigger on the raw URL ("?",
// "??", or "?info") or the auto_introspection shortcuts routes to the same
// response writeIntrospection produces for /.info/{identifier...} instead.
func HandleResolve(cat *catalog.Catalog, cfg *config.EnvConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cleaned := cleanedFromRequest(r, "/", cfg.ServicePattern)

		if cleaned.IsIntrospection {
			writeIntrospection(w, r, cat, cleaned.Identifier, cleaned.Original)
			return
		}

		res, err := resolver.Resolve(cat, cleaned.Identifier, r.Method, cfg.AutoIntrospection)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if res.Definition == nil {
			writeNotFound(w, http.StatusNotFound, res.Parts, cleaned.Original)
			return
		}
		if res.UseInfo {
			writeIntrospection(w, r, cat, cleaned.Identifier, cleaned.Original)
			return
		}

		if cfg.AccessLog {
			log.Printf("resolve: %s %s -> %d %s", r.Method, cleaned.Identifier, res.StatusCode, res.Target)
		}

		w.Header().Set("Location", res.Target)
		body := resolveResponse{
			partsResponse: newPartsResponse(res.Parts),
			Target:        res.Target,
			Canonical:     res.Canonical,
			StatusCode:    res.StatusCode,
		}
		WriteJSON(w, res.StatusCode, body)
	}
}

// HandleFavicon always answers /favicon.ico with 404: the resolve route
// would otherwise try (and fail) to treat "favicon.ico" as an identifier,
// polluting logs/metrics with noise from browser auto-requests.
func HandleFavicon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}
}
