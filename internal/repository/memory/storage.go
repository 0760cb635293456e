// Package memory is a process-local implementation of repository.Storage.
//
// Units of work started with InTx are serialized under one lock and run on a
// copy of the data, which replaces the committed data only when the unit of
// work succeeds. A failed unit of work leaves no trace.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository"
)

type state struct {
	customers    map[uuid.UUID]models.Customer
	tckn         map[string]uuid.UUID
	wallets      map[uuid.UUID]models.Wallet
	transactions map[uuid.UUID]models.Transaction
}

func newState() *state {
	return &state{
		customers:    make(map[uuid.UUID]models.Customer),
		tckn:         make(map[string]uuid.UUID),
		wallets:      make(map[uuid.UUID]models.Wallet),
		transactions: make(map[uuid.UUID]models.Transaction),
	}
}

func (s *state) clone() *state {
	return &state{
		customers:    maps.Clone(s.customers),
		tckn:         maps.Clone(s.tckn),
		wallets:      maps.Clone(s.wallets),
		transactions: maps.Clone(s.transactions),
	}
}

type committed struct {
	mu sync.Mutex
	st *state
}

type Storage struct {
	db *committed

	// Working copy when the storage is bound to a unit of work
	tx *state
}

func NewStorage() *Storage {
	return &Storage{db: &committed{st: newState()}}
}

// Ping reports the storage is alive, it always is unless ctx is done
func (s *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Storage) Customer() repository.CustomerRepo {
	return &CustomerRepo{s: s}
}

func (s *Storage) Wallet() repository.WalletRepo {
	return &WalletRepo{s: s}
}

func (s *Storage) Transaction() repository.TransactionRepo {
	return &TransactionRepo{s: s}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Nested unit of work behaves like a savepoint
	if s.tx != nil {
		work := s.tx.clone()
		if err := fn(&Storage{db: s.db, tx: work}); err != nil {
			return err
		}
		*s.tx = *work
		return nil
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	work := s.db.st.clone()
	if err := fn(&Storage{db: s.db, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.st = work

	return nil
}

// do runs a single operation either on the working copy or on the committed data under lock.
// Operations check everything before they mutate, so a failed one changes nothing.
func (s *Storage) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.tx != nil {
		return fn(s.tx)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return fn(s.db.st)
}
