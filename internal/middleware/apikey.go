package middleware

import (
	"crypto/subtle"
	"net/http"
)

// RequireAPIKey authenticates requests by the shared X-API-Key secret. The
// comparison is constant-time; an unconfigured key rejects everything, and
// the response never says which check failed.
func RequireAPIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if expected == "" || key == "" ||
				subtle.ConstantTimeCompare([]byte(expected), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"error":"API key not configured or missing"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
