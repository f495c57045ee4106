package ledger

import (
	"context"
	"errors"
	"sync"
)

var (
	errDuplicateWallet = errors.New("wallet exists")
	errHandleSettled   = errors.New("handle already settled")
)

// memoryStore mirrors the Postgres semantics in process memory: one mutex
// per wallet id plays the role of the row lock, and commits mutate the maps
// in a single critical section so readers never observe partial state.
type memoryStore struct {
	mu      sync.RWMutex
	wallets map[string]Wallet
	ops     map[string][]Operation
	locks   map[string]*sync.Mutex
}

// NewInMemory creates a concurrency-safe in-memory store for unit tests and
// for running the API without a database.
func NewInMemory() Store {
	return &memoryStore{
		wallets: make(map[string]Wallet),
		ops:     make(map[string][]Operation),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *memoryStore) CreateWallet(_ context.Context, w Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.wallets[w.ID]; exists {
		return storageErr("create wallet", errDuplicateWallet)
	}
	s.wallets[w.ID] = w
	s.locks[w.ID] = &sync.Mutex{}
	return nil
}

func (s *memoryStore) GetWallet(_ context.Context, id string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

func (s *memoryStore) Operations(_ context.Context, walletID string) ([]Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.wallets[walletID]; !ok {
		return nil, ErrWalletNotFound
	}
	stored := s.ops[walletID]
	// newest first, matching the SQL store
	ops := make([]Operation, len(stored))
	for i, op := range stored {
		ops[len(stored)-1-i] = op
	}
	return ops, nil
}

func (s *memoryStore) LockWallet(_ context.Context, id string) (LockedWallet, error) {
	s.mu.RLock()
	rowLock, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrWalletNotFound
	}

	// Block here, never while holding the store-wide mutex, so contention on
	// one wallet cannot stall readers or other wallets.
	rowLock.Lock()

	s.mu.RLock()
	snapshot := s.wallets[id]
	s.mu.RUnlock()

	return &memoryLockedWallet{store: s, rowLock: rowLock, wallet: snapshot}, nil
}

type memoryLockedWallet struct {
	store   *memoryStore
	rowLock *sync.Mutex
	wallet  Wallet
	settled bool
}

func (l *memoryLockedWallet) Wallet() Wallet {
	return l.wallet
}

func (l *memoryLockedWallet) Commit(_ context.Context, newBalance int64, op Operation) error {
	if l.settled {
		return storageErr("commit", errHandleSettled)
	}
	l.store.mu.Lock()
	w := l.store.wallets[l.wallet.ID]
	w.Balance = newBalance
	l.store.wallets[l.wallet.ID] = w
	l.store.ops[l.wallet.ID] = append(l.store.ops[l.wallet.ID], op)
	l.store.mu.Unlock()

	l.settled = true
	l.rowLock.Unlock()
	return nil
}

func (l *memoryLockedWallet) Abort(_ context.Context) error {
	if l.settled {
		return nil
	}
	l.settled = true
	l.rowLock.Unlock()
	return nil
}
