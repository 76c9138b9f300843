package api

import (
	"errors"
	"net/http"

	"github.com/CDLUC3/rslv-go/internal/catalog"
	"github.com/CDLUC3/rslv-go/internal/resolver"
	"github.com/CDLUC3/rslv-go/internal/template"
)

// writeServiceError maps a catalog/template error to an HTTP response.
// Identifier-resolution errors (not_found) are handled by the resolve/info
// handlers directly, since their body shape includes the parsed parts; this
// is for admin-style failures surfaced through the HTTP API.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		WriteError(w, http.StatusInternalServerError, "internal", "internal server error")
	case errors.Is(err, catalog.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, catalog.ErrDuplicate):
		WriteError(w, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, catalog.ErrValidation):
		WriteError(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, catalog.ErrStale):
		WriteError(w, http.StatusConflict, "stale", err.Error())
	case errors.Is(err, catalog.ErrCycle):
		WriteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, resolver.ErrUnsafeTarget):
		WriteError(w, http.StatusInternalServerError, "unsafe_target", err.Error())
	default:
		var tmplErr *template.Error
		if errors.As(err, &tmplErr) {
			WriteError(w, http.StatusInternalServerError, "template_error", err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
