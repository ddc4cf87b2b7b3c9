package middleware

import "net/http"

// DefaultMaxBodyBytes leaves room for base64 delivery-note images.
const DefaultMaxBodyBytes int64 = 6 << 20

// MaxBodyBytes caps request bodies; oversized payloads fail at decode time.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
