package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
)

// bearerTokenMiddleware requires "Authorization: Bearer <token>"
func bearerTokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logging.From(r.Context()).Warn("rejected job request", "path", r.URL.Path, "remote", r.RemoteAddr)
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
