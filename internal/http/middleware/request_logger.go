package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/medbookai/medbook/pkg/logging"
)

// quietPaths are probed constantly and would drown out real traffic.
var quietPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// RequestLogger emits structured logs for every HTTP request. Health and
// metrics probes are logged at debug only.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-Id")
			if reqID == "" {
				reqID = uuid.NewString()
			}

			next.ServeHTTP(w, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", reqID,
				"remote_ip", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if _, quiet := quietPaths[r.URL.Path]; quiet {
				logger.Debug("request completed", attrs...)
				return
			}
			logger.Info("request completed", attrs...)
		})
	}
}
