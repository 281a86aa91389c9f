package middleware

import "net/http"

// NewMaxBodySizeHandler returns a middleware that caps incoming request
// bodies at limit bytes. Reads past the limit fail, which surfaces to
// handlers as a body-decode error rather than letting one client hold a
// connection open streaming an unbounded payload. Notes maps are the
// largest legitimate body and stay far under any sane limit.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
