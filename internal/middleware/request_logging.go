package middleware

import (
	"net/http"
	"time"

	"wetmill-backend/internal/logging"

	"github.com/sirupsen/logrus"
)

// RequestLogging logs one line per API request. It runs inside
// Authenticate so the caller is known.
func RequestLogging(next http.Handler) http.Handler {
	log := logging.Module("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		fields := logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if c, ok := CallerFrom(r.Context()); ok {
			fields["user_id"] = c.UserID
			fields["role"] = c.Role
			if c.StationID != nil {
				fields["cws_id"] = *c.StationID
			}
		}

		entry := log.WithFields(fields)
		switch {
		case wrapped.statusCode >= 500:
			entry.Error("request failed")
		case wrapped.statusCode >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	})
}
