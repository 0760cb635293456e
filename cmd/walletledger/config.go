package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/walletledger/internal/handlers/middleware"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/service/ledger"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultStorage      = StoragePostgres
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Storage kind: postgres or memory
	// Memory storage keeps nothing between restarts and is meant for local runs
	Storage string

	// Database to connect to. Required for postgres storage
	DatabaseDSN string

	// Redis to cache wallets and keep idempotent responses in
	// Both are disabled if empty
	RedisURL string

	// How long a response is replayed for the same Idempotency-Key
	IdempotencyTTL time.Duration

	// Deposits and withdrawals above it need employee approval
	ApprovalThreshold decimal.Decimal

	// Secret key
	// Some internal parts (like signing JWT tokens) uses symmetric encryption, so this key is used for that purpose
	SecretKey string

	// Environment
	Environment string

	// First employee created on start if no customer with the TCKN exists
	AdminTCKN     string
	AdminPassword string

	// Origins allowed to call the API from browser
	CORSOrigins []string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:          defaultLoggingLevel,
		ListenAddr:        defaultListenAddr,
		Environment:       defaultEnvironment,
		Storage:           defaultStorage,
		IdempotencyTTL:    middleware.DefaultIdempotencyTTL,
		ApprovalThreshold: ledger.DefaultThreshold,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setDecimal := func(o *decimal.Decimal) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := decimal.NewFromString(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setList := func(o *[]string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = splitList(value)
			}
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":        setString(&c.ListenAddr),
		"DATABASE_URI":       setString(&c.DatabaseDSN),
		"SECRET_KEY":         setString(&c.SecretKey),
		"LOG_LEVEL":          setString(&c.LogLevel),
		"ENVIRONMENT":        setString(&c.Environment),
		"STORAGE":            setString(&c.Storage),
		"REDIS_URL":          setString(&c.RedisURL),
		"IDEMPOTENCY_TTL":    setDuration(&c.IdempotencyTTL),
		"APPROVAL_THRESHOLD": setDecimal(&c.ApprovalThreshold),
		"ADMIN_TCKN":         setString(&c.AdminTCKN),
		"ADMIN_PASSWORD":     setString(&c.AdminPassword),
		"CORS_ORIGINS":       setList(&c.CORSOrigins),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("walletledger", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.Storage, "storage", c.Storage, "Storage (postgres, memory)")
	fs.StringVarP(&c.RedisURL, "redis", "r", c.RedisURL, "Redis URL, wallet cache and idempotency are disabled if empty")
	fs.DurationVar(&c.IdempotencyTTL, "idempotency-ttl", c.IdempotencyTTL, "How long idempotent responses are kept")
	fs.Var((*decimalValue)(&c.ApprovalThreshold), "threshold", "Amount above which transactions need approval")
	fs.StringVar(&c.AdminTCKN, "admin-tckn", c.AdminTCKN, "TCKN of the employee created on start")
	fs.StringVar(&c.AdminPassword, "admin-password", c.AdminPassword, "Password of the employee created on start")
	fs.StringSliceVar(&c.CORSOrigins, "cors-origins", c.CORSOrigins, "Comma separated origins allowed by CORS")

	return fs.Parse(args)
}

// Validate reports every problem of the config at once
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}

	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("database DSN is required for postgres storage"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q, use %s or %s", c.Storage, StoragePostgres, StorageMemory))
	}

	if !c.ApprovalThreshold.IsPositive() {
		errs = append(errs, fmt.Errorf("approval threshold must be positive, got %s", c.ApprovalThreshold))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, fmt.Errorf("idempotency TTL must be positive, got %s", c.IdempotencyTTL))
	}
	if (c.AdminTCKN == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("admin TCKN and password must be set together"))
	}

	return errors.Join(errs...)
}

func splitList(value string) []string {
	var items []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// pflag.Value for decimal flags
type decimalValue decimal.Decimal

func (v *decimalValue) String() string {
	return (*decimal.Decimal)(v).String()
}

func (v *decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*v = decimalValue(d)
	return nil
}

func (v *decimalValue) Type() string {
	return "decimal"
}
