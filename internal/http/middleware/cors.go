package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsAllowedHeaders = "Authorization, Content-Type, X-API-Key, X-Request-ID"
	corsAllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
)

// CORS echoes allowed origins back with credentials enabled. "*" allows any
// origin; a localhost entry also admits 127.0.0.1 on the same port and vice
// versa.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny, allow := expandOrigins(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin != "" && (allowAny || isAllowedOrigin(allow, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
				w.Header().Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions && origin != "" && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OriginChecker returns a predicate over Origin headers using the same rules
// as CORS. An empty origin is allowed.
func OriginChecker(allowedOrigins []string) func(origin string) bool {
	allowAny, allow := expandOrigins(allowedOrigins)
	return func(origin string) bool {
		origin = strings.TrimSpace(origin)
		return origin == "" || allowAny || isAllowedOrigin(allow, origin)
	}
}

func expandOrigins(origins []string) (bool, map[string]struct{}) {
	allow := map[string]struct{}{}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return true, nil
		}
		allow[origin] = struct{}{}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Hostname() == "" {
			continue
		}
		port := ""
		if u.Port() != "" {
			port = ":" + u.Port()
		}
		switch u.Hostname() {
		case "localhost":
			allow[u.Scheme+"://127.0.0.1"+port] = struct{}{}
		case "127.0.0.1":
			allow[u.Scheme+"://localhost"+port] = struct{}{}
		}
	}
	return false, allow
}

func isAllowedOrigin(allow map[string]struct{}, origin string) bool {
	_, ok := allow[origin]
	return ok
}
