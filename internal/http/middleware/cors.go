package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	corsAllowedHeaders  = "Authorization, Content-Type, X-Request-Id"
	corsAllowedMethods  = "GET, POST, OPTIONS"
	// The widget reads the request id to quote it when a turn fails.
	corsExposedHeaders  = "X-Request-Id, Retry-After"
	corsPreflightMaxAge = 10 * time.Minute
)

// CORS lets the chat widget call the API from the business's own sites.
//
// Origins are compared case-insensitively and without a trailing slash, so
// "https://VIPRide.example/" in config matches the browser's "https://vipride.example".
// "*" echoes any Origin back. Preflights from origins not on the list are refused
// with 403 instead of reaching the chat handlers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	allow := map[string]struct{}{}
	for _, origin := range allowedOrigins {
		origin = normalizeOrigin(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAny = true
			continue
		}
		allow[origin] = struct{}{}
	}
	enabled := allowAny || len(allow) > 0
	maxAge := strconv.Itoa(int(corsPreflightMaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			preflight := r.Method == http.MethodOptions && origin != "" && r.Header.Get("Access-Control-Request-Method") != ""

			// Responses differ per Origin whenever an allow-list is active, so shared
			// caches must key on it even for refused origins.
			if enabled {
				w.Header().Add("Vary", "Origin")
				if preflight {
					w.Header().Add("Vary", "Access-Control-Request-Method")
					w.Header().Add("Vary", "Access-Control-Request-Headers")
				}
			}

			allowed := origin != "" && (allowAny || isAllowedOrigin(allow, origin))
			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Expose-Headers", corsExposedHeaders)
			}

			if preflight {
				if !allowed {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}

func isAllowedOrigin(allow map[string]struct{}, origin string) bool {
	_, ok := allow[normalizeOrigin(origin)]
	return ok
}
