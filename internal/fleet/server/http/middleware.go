package http

import (
	"net/http"
	"time"

	"github.com/Rus1K7/Airport/pkg/log"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		// Health checks and scrapes are noise at info level.
		logf := log.Info
		switch r.URL.Path {
		case "/healthz", "/readyz", "/metrics":
			logf = log.Debug
		}
		logf("HTTP request", "method", r.Method, "path", r.URL.Path, "status", sw.status, "duration", time.Since(start))
	})
}
