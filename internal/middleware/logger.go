package middleware

import (
	"net/http"
	"time"

	"NetMonitorAPI/internal/logger"
)

// statusRecorder captures the status code and byte count for the access
// log line; http.ResponseWriter exposes neither after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// RequestLogger writes one access log line per request.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("%s %s %d %dms %d bytes",
				r.Method,
				r.URL.Path,
				rec.status,
				time.Since(start).Milliseconds(),
				rec.bytes,
			)
		})
	}
}
