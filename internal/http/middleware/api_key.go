package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// RequireAPIKey guards config writes. The key comes from X-API-Key or a
// Bearer token. A valid admin JWT is accepted in place of the key when
// jwtSecret is set. With no key configured every request passes.
func RequireAPIKey(apiKey, jwtSecret string, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	expected := strings.TrimSpace(apiKey)
	if expected == "" {
		logger.Warn("WIDGET_CONFIG_API_KEY not set; widget config updates are unauthenticated")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				next.ServeHTTP(w, r)
				return
			}
			bearer, _ := bearerToken(r)
			if jwtSecret != "" && bearer != "" {
				if claims, ok := parseAdminToken(bearer, jwtSecret); ok {
					next.ServeHTTP(w, r.WithContext(withAdminClaims(r.Context(), claims)))
					return
				}
			}

			provided := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if provided == "" {
				provided = bearer
			}
			if provided == "" {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized", "API key required. Provide X-API-Key header or Authorization: Bearer <key>")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				logger.Warn("rejected widget config write", "remote_ip", ClientIP(r), "path", r.URL.Path)
				writeAuthError(w, http.StatusForbidden, "Forbidden", "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
