package ledger

import "context"

// CommitInstruction is what a guard body returns when the mutation should be
// applied: the recomputed balance and the operation to append alongside it.
type CommitInstruction struct {
	NewBalance int64
	Operation  Operation
}

// BodyFunc inspects the wallet snapshot read under the lock and either
// returns a commit instruction or an error that aborts the unit.
type BodyFunc func(w Wallet) (CommitInstruction, error)

// Guard provides scoped exclusive access to a wallet row. The balance engine
// never touches a balance outside WithLockedWallet.
type Guard struct {
	store Store
}

// NewGuard builds a guard over the provided store.
func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// WithLockedWallet acquires the wallet's lock, runs body on the freshly
// locked snapshot and settles the atomic unit. The lock is released on every
// exit path: commit, body rejection, storage failure or panic.
func (g *Guard) WithLockedWallet(ctx context.Context, id string, body BodyFunc) (Operation, error) {
	locked, err := g.store.LockWallet(ctx, id)
	if err != nil {
		return Operation{}, err
	}
	defer locked.Abort(ctx) // nolint:errcheck

	instr, err := body(locked.Wallet())
	if err != nil {
		return Operation{}, err
	}

	if err := locked.Commit(ctx, instr.NewBalance, instr.Operation); err != nil {
		return Operation{}, err
	}

	return instr.Operation, nil
}
