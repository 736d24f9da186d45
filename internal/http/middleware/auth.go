package middleware

import (
	"crypto/subtle"
	"net/http"
)

const KeyHeader = "X-Dashboard-Key"

// RequireKey rejects requests whose X-Dashboard-Key header does not match
// key. An empty key disables the check.
func RequireKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(KeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
