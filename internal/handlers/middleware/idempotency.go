package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nkiryanov/walletledger/internal/handlers/identityctx"
	"github.com/nkiryanov/walletledger/internal/handlers/render"
)

const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replayed"
	DefaultIdempotencyTTL  = 24 * time.Hour

	idempotencyPrefix = "idempotency:v1:"
	inProgressMarker  = "__in_progress__"
	maxKeyLength      = 255
	redisTimeout      = 2 * time.Second
)

type storedResponse struct {
	Status  int               `json:"status"`
	Body    []byte            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// Passes response to the client and keeps a copy of it
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *responseRecorder) WriteHeader(statusCode int) {
	if w.status == 0 {
		w.status = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.body.Write(p)
	return w.ResponseWriter.Write(p)
}

// Idempotency replays the stored response for a repeated Idempotency-Key
//
// Keys are scoped per authenticated customer, so it must run after AuthMiddleware.
// While the first request is in flight duplicates get 409. Server errors are not stored
// and the request may be retried with the same key.
// If client is nil requests are passed as is.
func Idempotency(client *redis.Client, ttl time.Duration, l errorLogger) func(http.Handler) http.Handler {
	if client == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxKeyLength {
				render.ServiceError(w, "Idempotency-Key is too long", http.StatusBadRequest)
				return
			}

			identity, ok := identityctx.FromContext(r.Context())
			if !ok {
				l.Error("Idempotency used without authenticated customer", "uri", r.RequestURI)
				next.ServeHTTP(w, r)
				return
			}
			cacheKey := idempotencyPrefix + identity.CustomerID.String() + ":" + key

			ctx, cancel := redisContext(r)
			defer cancel()

			cached, err := client.Get(ctx, cacheKey).Bytes()
			switch {
			case err == nil:
				replay(w, cached, l)
				return
			case !errors.Is(err, redis.Nil):
				l.Error("Idempotency lookup failed", "key", key, "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			reserved, err := client.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
			switch {
			case err != nil:
				l.Error("Idempotency reservation failed", "key", key, "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			case !reserved:
				render.ServiceError(w, "Duplicate request is being processed", http.StatusConflict)
				return
			}

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// Handler time does not count against redisTimeout
			ctx, cancel = redisContext(r)
			defer cancel()

			if rec.status == 0 || rec.status >= http.StatusInternalServerError {
				release(ctx, client, cacheKey, key, l)
				return
			}

			stored := storedResponse{
				Status:  rec.status,
				Body:    rec.body.Bytes(),
				Headers: map[string]string{"Content-Type": rec.Header().Get("Content-Type")},
			}
			payload, err := json.Marshal(stored)
			if err == nil {
				err = client.Set(ctx, cacheKey, payload, ttl).Err()
			}
			if err != nil {
				l.Error("Failed to persist idempotent response", "key", key, "error", err)
				release(ctx, client, cacheKey, key, l)
			}
		})
	}
}

// redisContext is not canceled together with the request
func redisContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), redisTimeout)
}

// release drops the in-progress marker so the key may be retried
func release(ctx context.Context, client *redis.Client, cacheKey, key string, l errorLogger) {
	if err := client.Del(ctx, cacheKey).Err(); err != nil {
		l.Error("Failed to release idempotency key", "key", key, "error", err)
	}
}

func replay(w http.ResponseWriter, cached []byte, l errorLogger) {
	if string(cached) == inProgressMarker {
		render.ServiceError(w, "Duplicate request is being processed", http.StatusConflict)
		return
	}

	var stored storedResponse
	if err := json.Unmarshal(cached, &stored); err != nil {
		l.Error("Failed to decode stored idempotent response", "error", err)
		render.ServiceError(w, "Duplicate request", http.StatusConflict)
		return
	}

	for header, value := range stored.Headers {
		if value != "" {
			w.Header().Set(header, value)
		}
	}
	w.Header().Set(IdempotentReplayHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}
