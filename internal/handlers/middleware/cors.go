package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browsers from origins to call the API
// Without origins the handler is returned untouched
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", IdempotencyKeyHeader},
		ExposedHeaders: []string{IdempotentReplayHeader},
		MaxAge:         300,
	})
}
