package middleware

import (
	"net/http"
	"time"
)

type errorLogger interface {
	Error(msg string, args ...any)
}

type requestLogger interface {
	Info(msg string, args ...any)
	errorLogger
}

type logData struct {
	responseStatus int
	responseSize   int
}

type logWriter struct {
	http.ResponseWriter
	data logData
}

func (w *logWriter) Write(p []byte) (int, error) {
	size, err := w.ResponseWriter.Write(p)
	w.data.responseSize += size
	return size, err
}

func (w *logWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.data.responseStatus = statusCode
}

func (w *logWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// LoggerMiddleware logs every request, server errors at error level
// Idempotent requests are logged with their key and whether the response was replayed
func LoggerMiddleware(l requestLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &logWriter{
				ResponseWriter: w,
				data:           logData{responseStatus: http.StatusOK, responseSize: 0},
			}

			next.ServeHTTP(lw, r)

			log := l.Info
			if lw.data.responseStatus >= http.StatusInternalServerError {
				log = l.Error
			}
			log(
				"got HTTP request",
				"method", r.Method,
				"uri", r.RequestURI,
				"duration", time.Since(start),
				"status", lw.data.responseStatus,
				"size", lw.data.responseSize,
				"idempotency_key", r.Header.Get(IdempotencyKeyHeader),
				"replayed", lw.Header().Get(IdempotentReplayHeader) == "true",
			)
		})
	}
}
