package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/handlers/identityctx"
	"github.com/nkiryanov/walletledger/internal/handlers/render"
	"github.com/nkiryanov/walletledger/internal/models"
)

type authService interface {
	Authenticate(ctx context.Context, r *http.Request) (models.Identity, error)
}

// AuthMiddleware puts caller identity to request context or rejects the request
func AuthMiddleware(as authService, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := as.Authenticate(r.Context(), r)
			switch {
			case err == nil:
			case errors.Is(err, apperrors.ErrUnauthorized):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			default:
				l.Error("Failed to authenticate request", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := identityctx.New(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
