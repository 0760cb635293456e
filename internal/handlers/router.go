package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nkiryanov/walletledger/internal/handlers/middleware"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/service/auth"
	"github.com/nkiryanov/walletledger/internal/service/customer"
	"github.com/nkiryanov/walletledger/internal/service/ledger"
	"github.com/nkiryanov/walletledger/internal/service/wallet"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type Config struct {
	// Allowed CORS origins. CORS is disabled if empty
	CORSOrigins []string

	// Idempotency-Key support is disabled if Redis is nil
	Redis          *redis.Client
	IdempotencyTTL time.Duration
}

type Services struct {
	Auth      authService
	Customers customerService
	Wallets   walletService
	Ledger    ledgerService
	Health    pinger
}

func NewRouter(cfg Config, s Services, l logger.Logger) http.Handler {
	withAuth := middleware.AuthMiddleware(s.Auth, l)
	idempotent := middleware.Idempotency(cfg.Redis, cfg.IdempotencyTTL, l)
	withIdempotency := func(h http.Handler) http.Handler {
		return chain(h, withAuth, idempotent)
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/login", handleLogin(s.Auth, l))

	api.Handle("POST /customers", withAuth(handleCreateCustomer(s.Customers, l)))
	api.Handle("GET /customers", withAuth(handleListCustomers(s.Customers, l)))
	api.Handle("GET /customers/me", withAuth(handleCustomerMe(s.Customers, l)))
	api.Handle("GET /customers/{id}", withAuth(handleGetCustomer(s.Customers, l)))

	api.Handle("POST /wallets", withAuth(handleCreateWallet(s.Wallets, l)))
	api.Handle("GET /wallets/{id}", withAuth(handleGetWallet(s.Wallets, l)))
	api.Handle("GET /wallets/customer/{customerId}", withAuth(handleListWallets(s.Wallets, l)))

	api.Handle("POST /transactions/deposit", withIdempotency(handleDeposit(s.Wallets, s.Ledger, l)))
	api.Handle("POST /transactions/withdraw", withIdempotency(handleWithdraw(s.Wallets, s.Ledger, l)))
	api.Handle("POST /transactions/approve", withIdempotency(handleApprove(s.Ledger, l)))
	api.Handle("GET /transactions/{id}", withAuth(handleGetTransaction(s.Wallets, s.Ledger, l)))
	api.Handle("GET /transactions/wallet/{walletId}", withAuth(handleListTransactions(s.Wallets, s.Ledger, l)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("GET /health", handleHealth(s.Health, l))

	handler := chain(root,
		middleware.LoggerMiddleware(l),
		middleware.CORS(cfg.CORSOrigins),
	)

	return handler
}

type authService interface {
	// Check credentials and issue access token
	// Has to return apperrors.ErrUnauthorized if credentials do not match
	Login(ctx context.Context, tckn string, password string) (auth.LoginResult, error)

	// Get request and return caller identity if it authenticated or error
	Authenticate(ctx context.Context, r *http.Request) (models.Identity, error)
}

type customerService interface {
	CreateCustomer(ctx context.Context, p customer.CreateParams) (models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	HasWallets(ctx context.Context, id uuid.UUID) (bool, error)
}

type walletService interface {
	CreateWallet(ctx context.Context, p wallet.CreateParams) (models.Wallet, error)
	GetWallet(ctx context.Context, id uuid.UUID) (models.Wallet, error)
	ListWallets(ctx context.Context, customerID uuid.UUID, currency *models.Currency) ([]models.Wallet, error)
}

type ledgerService interface {
	Deposit(ctx context.Context, p ledger.DepositParams) (models.Transaction, error)
	Withdraw(ctx context.Context, p ledger.WithdrawParams) (models.Transaction, error)
	Approve(ctx context.Context, p ledger.ApproveParams) (models.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (models.Transaction, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}
