package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nkiryanov/walletledger/internal/models"
)

const (
	walletPrefix     = "wallet:v1:"
	DefaultWalletTTL = 5 * time.Minute
)

// WalletCache keeps recently read wallets in Redis
// Zero value and nil are valid and cache nothing
type WalletCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewWalletCache(client *redis.Client, ttl time.Duration) *WalletCache {
	if ttl <= 0 {
		ttl = DefaultWalletTTL
	}
	return &WalletCache{client: client, ttl: ttl}
}

func (c *WalletCache) enabled() bool {
	return c != nil && c.client != nil
}

func walletKey(id uuid.UUID) string {
	return walletPrefix + id.String()
}

// Get returns cached wallet. ok is false on cache miss
func (c *WalletCache) Get(ctx context.Context, id uuid.UUID) (w models.Wallet, ok bool, err error) {
	if !c.enabled() {
		return w, false, nil
	}

	raw, err := c.client.Get(ctx, walletKey(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return w, false, nil
	case err != nil:
		return w, false, fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal(raw, &w); err != nil {
		return w, false, fmt.Errorf("cache decode: %w", err)
	}

	return w, true, nil
}

func (c *WalletCache) Set(ctx context.Context, w models.Wallet) error {
	if !c.enabled() {
		return nil
	}

	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	if err := c.client.Set(ctx, walletKey(w.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

// Invalidate drops the wallet so the next read goes to the storage
func (c *WalletCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if !c.enabled() {
		return nil
	}

	if err := c.client.Del(ctx, walletKey(id)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}

	return nil
}
