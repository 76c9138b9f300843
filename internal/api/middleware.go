package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestIDHeader is the response header carrying the per-request
// correlation ID, mirroring the upstream request header name of the same
// purpose so a caller-supplied ID is echoed back rather than replaced.
const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware assigns a request-scoped correlation ID, reusing an
// inbound X-Request-Id header if the caller supplied one, and stamps it on
// both the request context and the response header. It is not used for
// authorization; RSLV's resolve surface has no credential to check.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the correlation ID stamped by
// RequestIDMiddleware, or "" if none is present (e.g. in a unit test that
// calls a handler directly).
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
