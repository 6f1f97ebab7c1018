package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/ghuser/ratapay/pkg/httpx"
	"github.com/ghuser/ratapay/pkg/logger"
)

// RequireOperator is a chi middleware guarding the back-office endpoints.
// Requests must carry "Authorization: Bearer <apiKey>". Returns 401
// Unauthorized when the header is missing or the key does not match.
// An empty apiKey rejects every request.
func RequireOperator(apiKey string, log logger.Logger) func(http.Handler) http.Handler {
	want := []byte(apiKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				log.WarnContext(r.Context(), "operator request without bearer token", "path", r.URL.Path)
				unauthorized(w, "authentication required")
				return
			}
			if len(want) == 0 || subtle.ConstantTimeCompare([]byte(token), want) != 1 {
				log.WarnContext(r.Context(), "operator request with invalid key", "path", r.URL.Path)
				unauthorized(w, "invalid credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="ratapay"`)
	httpx.JSONError(w, http.StatusUnauthorized, message)
}
