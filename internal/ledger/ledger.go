package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrWalletNotFound occurs when the referenced wallet id does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientFunds occurs when a withdrawal exceeds the balance read
	// under the wallet's lock.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBalanceOverflow occurs when a deposit would push the balance past
	// the representable maximum.
	ErrBalanceOverflow = errors.New("balance overflow")

	// ErrStorageUnavailable wraps underlying store failures. Commits are
	// all-or-nothing, so a wrapped error always means no partial state.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// OperationType enumerates the balance-changing operation kinds.
type OperationType string

const (
	OperationDeposit  OperationType = "DEPOSIT"
	OperationWithdraw OperationType = "WITHDRAW"
)

// Valid reports whether t is a member of the closed operation enumeration.
func (t OperationType) Valid() bool {
	return t == OperationDeposit || t == OperationWithdraw
}

// Wallet holds a non-negative balance in the smallest currency unit.
type Wallet struct {
	ID        string
	Balance   int64
	CreatedAt time.Time
}

// Operation is an immutable ledger record of one committed deposit or
// withdrawal. Operations are append-only: never updated, never deleted.
type Operation struct {
	ID        string
	WalletID  string
	Type      OperationType
	Amount    int64
	CreatedAt time.Time
}

// LockedWallet is an exclusive handle on one wallet row. Exactly one of
// Commit or Abort settles the handle; both release the lock. Abort after a
// successful Commit is a no-op so callers may defer it.
type LockedWallet interface {
	// Wallet returns the snapshot read under the lock. It is the only
	// balance a caller may base a mutation on.
	Wallet() Wallet

	// Commit durably writes the new balance and appends op in one atomic
	// unit, then releases the lock. On error nothing is persisted.
	Commit(ctx context.Context, newBalance int64, op Operation) error

	// Abort releases the lock without writing.
	Abort(ctx context.Context) error
}

// Store is the durable keyed store behind the balance engine.
type Store interface {
	CreateWallet(ctx context.Context, w Wallet) error
	GetWallet(ctx context.Context, id string) (Wallet, error)

	// Operations lists committed ledger entries for a wallet, newest first.
	Operations(ctx context.Context, walletID string) ([]Operation, error)

	// LockWallet acquires the exclusive per-wallet lock, blocking other
	// callers for the same id until the handle commits or aborts. Callers
	// targeting different wallets never block each other.
	LockWallet(ctx context.Context, id string) (LockedWallet, error)
}
