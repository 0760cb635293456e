package identityctx

import (
	"context"

	"github.com/nkiryanov/walletledger/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Create a new context with the caller identity
func New(ctx context.Context, i models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, i)
}

// Extract the caller identity from the context
func FromContext(ctx context.Context) (models.Identity, bool) {
	i, ok := ctx.Value(identityKey).(models.Identity)
	return i, ok
}
