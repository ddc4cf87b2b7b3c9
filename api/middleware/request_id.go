package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 128
)

// RequestID tags the request context with a correlation id and echoes it in
// the response. An inbound X-Request-Id is kept when it is short printable
// ASCII; anything else is replaced by a fresh uuid. The id later rides on
// every outbox event the request emits.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := inboundRequestID(r)
			w.Header().Set(requestIDHeader, id)
			if logg == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(logg.WithRequestID(r.Context(), id)))
		})
	}
}

func inboundRequestID(r *http.Request) string {
	id := r.Header.Get(requestIDHeader)
	if id == "" || len(id) > maxRequestIDLength || strings.IndexFunc(id, notVisibleASCII) >= 0 {
		return uuid.NewString()
	}
	return id
}

func notVisibleASCII(c rune) bool {
	return c < '!' || c > '~'
}
