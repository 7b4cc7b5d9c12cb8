package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/pkg/ctxutil"
)

// RequestIDHeader carries the request id in and out of the service.
const RequestIDHeader = "X-Request-Id"

// RequestID tags each request with an id for log correlation. An id supplied
// by the caller is trusted and reused so a request can be traced across the
// LINE webhook relay and the dashboard proxy; otherwise a fresh UUID is
// generated. The id is stored in the context and echoed in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
	})
}
