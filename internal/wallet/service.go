package wallet

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/quillpay/quillpay/internal/ledger"
)

// Service is the balance engine. It composes the validator, the guard and
// the store into the two public operations: read-balance and apply-operation.
type Service struct {
	store ledger.Store
	guard *ledger.Guard
}

// NewService builds a balance engine over the provided store.
func NewService(store ledger.Store) *Service {
	return &Service{store: store, guard: ledger.NewGuard(store)}
}

// OperationInput carries a raw, not-yet-validated operation request.
type OperationInput struct {
	Type   string
	Amount int64
}

// Receipt describes a committed operation and the post-commit balance.
type Receipt struct {
	OperationID string
	Type        ledger.OperationType
	Amount      int64
	NewBalance  int64
	CreatedAt   time.Time
}

// Balance is the unlocked read of a wallet's funds.
type Balance struct {
	WalletID string
	Amount   int64
	AsOf     time.Time
}

// Create provisions a wallet with an initial balance. Wallet creation sits
// outside the mutation engine; it exists for the admin surface and tests.
func (s *Service) Create(ctx context.Context, initialBalance int64) (ledger.Wallet, error) {
	if initialBalance < 0 {
		return ledger.Wallet{}, ErrInvalidAmount
	}
	w := ledger.Wallet{
		ID:        uuid.NewString(),
		Balance:   initialBalance,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateWallet(ctx, w); err != nil {
		return ledger.Wallet{}, err
	}
	return w, nil
}

// Balance returns the wallet's balance without locking. A momentarily stale
// read is acceptable for display; the lock protects mutations, not reads.
func (s *Service) Balance(ctx context.Context, id string) (Balance, error) {
	w, err := s.store.GetWallet(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	return Balance{WalletID: w.ID, Amount: w.Balance, AsOf: time.Now().UTC()}, nil
}

// Operations returns the wallet's committed ledger entries, newest first.
func (s *Service) Operations(ctx context.Context, id string) ([]ledger.Operation, error) {
	return s.store.Operations(ctx, id)
}

// Apply validates the requested operation, then mutates the wallet under its
// row lock: re-read balance, check funds, compute, commit balance and ledger
// entry as one atomic unit. On any error nothing is persisted.
func (s *Service) Apply(ctx context.Context, walletID string, input OperationInput) (Receipt, error) {
	typ, err := ValidateOperation(input.Type, input.Amount)
	if err != nil {
		return Receipt{}, err
	}

	var newBalance int64
	op, err := s.guard.WithLockedWallet(ctx, walletID, func(w ledger.Wallet) (ledger.CommitInstruction, error) {
		// Business rule on the freshly locked balance, never on a value read
		// before the lock was taken.
		switch typ {
		case ledger.OperationWithdraw:
			if input.Amount > w.Balance {
				return ledger.CommitInstruction{}, ledger.ErrInsufficientFunds
			}
			newBalance = w.Balance - input.Amount
		default:
			if input.Amount > math.MaxInt64-w.Balance {
				return ledger.CommitInstruction{}, ledger.ErrBalanceOverflow
			}
			newBalance = w.Balance + input.Amount
		}

		return ledger.CommitInstruction{
			NewBalance: newBalance,
			Operation: ledger.Operation{
				ID:        uuid.NewString(),
				WalletID:  w.ID,
				Type:      typ,
				Amount:    input.Amount,
				CreatedAt: time.Now().UTC(),
			},
		}, nil
	})
	if err != nil {
		return Receipt{}, err
	}

	return Receipt{
		OperationID: op.ID,
		Type:        op.Type,
		Amount:      op.Amount,
		NewBalance:  newBalance,
		CreatedAt:   op.CreatedAt,
	}, nil
}
