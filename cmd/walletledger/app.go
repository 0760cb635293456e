package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/walletledger/internal/cache"
	"github.com/nkiryanov/walletledger/internal/db"
	"github.com/nkiryanov/walletledger/internal/handlers"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/repository"
	"github.com/nkiryanov/walletledger/internal/repository/memory"
	"github.com/nkiryanov/walletledger/internal/repository/postgres"
	"github.com/nkiryanov/walletledger/internal/service/auth"
	"github.com/nkiryanov/walletledger/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/walletledger/internal/service/customer"
	"github.com/nkiryanov/walletledger/internal/service/ledger"
	"github.com/nkiryanov/walletledger/internal/service/wallet"
)

const shutdownTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger  logger.Logger
	closers []func()
}

func NewServerApp(ctx context.Context, c *Config) (_ *ServerApp, err error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	app := &ServerApp{ListenAddr: c.ListenAddr, logger: l}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	// Initialize storage
	var (
		storage repository.Storage
		health  pinger
	)
	switch c.Storage {
	case StorageMemory:
		mem := memory.NewStorage()
		storage, health = mem, mem
		l.Warn("Memory storage is used, nothing is kept between restarts")
	default:
		pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		app.closers = append(app.closers, pool.Close)
		storage, health = postgres.NewStorage(pool), pool
	}

	// Redis is optional: without it wallet cache caches nothing and idempotency keys are ignored
	walletCache := cache.NewWalletCache(nil, 0)
	routerCfg := handlers.Config{CORSOrigins: c.CORSOrigins, IdempotencyTTL: c.IdempotencyTTL}
	if c.RedisURL != "" {
		client, err := cache.Connect(ctx, c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}
		app.closers = append(app.closers, func() { _ = client.Close() })
		walletCache = cache.NewWalletCache(client, cache.DefaultWalletTTL)
		routerCfg.Redis = client
	}

	// Initialize services
	customerService, err := customer.NewService(auth.DefaultHasher, storage, l)
	if err != nil {
		return nil, fmt.Errorf("error while creating customer service. Err: %w", err)
	}
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, tokenManager, customerService)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	ledgerService, err := ledger.NewService(ledger.Config{Threshold: c.ApprovalThreshold}, storage, walletCache, l)
	if err != nil {
		return nil, fmt.Errorf("error while creating ledger service. Err: %w", err)
	}
	walletService := wallet.NewService(storage, walletCache, l)

	if c.AdminTCKN != "" {
		admin, err := customerService.EnsureEmployee(ctx, customer.CreateParams{
			Name:     "Admin",
			Surname:  "Admin",
			TCKN:     c.AdminTCKN,
			Password: c.AdminPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("error while seeding admin employee. Err: %w", err)
		}
		l.Info("Admin employee is ready", "customer", admin.ID)
	}

	app.Handler = handlers.NewRouter(routerCfg, handlers.Services{
		Auth:      authService,
		Customers: customerService,
		Wallets:   walletService,
		Ledger:    ledgerService,
		Health:    health,
	}, l)

	return app, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

// Close releases storage and cache connections
func (s *ServerApp) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
