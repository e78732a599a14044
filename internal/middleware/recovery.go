package middleware

import (
	"net/http"
	"runtime/debug"

	"NetMonitorAPI/internal/logger"
)

// Recovery converts a handler panic into a 500 response. The panic value
// and stack go to the log only; the caller gets a generic body.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error("Panic serving %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error": "Internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
