package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nkiryanov/walletledger/internal/handlers/render"
	"github.com/nkiryanov/walletledger/internal/logger"
)

const healthTimeout = 2 * time.Second

func handleHealth(p pinger, l logger.Logger) http.Handler {
	type response struct {
		Status string `json:"status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			l.Warn("Health check failed", "error", err)
			render.ServiceErrorWithData(w, "Storage is unavailable", http.StatusServiceUnavailable, response{Status: "down"})
			return
		}

		render.JSON(w, response{Status: "up"})
	})
}
