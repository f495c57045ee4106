package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists wallets and their operation ledger in PostgreSQL.
// Exclusive access is a row lock: SELECT ... FOR UPDATE inside a transaction,
// held until the enclosing commit or rollback.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateWallet inserts a wallet record.
func (s *PostgresStore) CreateWallet(ctx context.Context, w Wallet) error {
	walletID, err := uuid.Parse(w.ID)
	if err != nil {
		return fmt.Errorf("invalid wallet id: %w", err)
	}
	_, err = s.db.Exec(ctx, `INSERT INTO wallets (id, balance, created_at)
        VALUES ($1, $2, $3)`, walletID, w.Balance, w.CreatedAt.UTC())
	if err != nil {
		return storageErr("create wallet", err)
	}
	return nil
}

// GetWallet fetches a wallet by identifier without locking it.
func (s *PostgresStore) GetWallet(ctx context.Context, id string) (Wallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, ErrWalletNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT id, balance, created_at FROM wallets WHERE id = $1`, walletID)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, storageErr("get wallet", err)
	}
	return w, nil
}

// Operations lists the committed ledger entries for a wallet, newest first.
func (s *PostgresStore) Operations(ctx context.Context, walletID string) ([]Operation, error) {
	id, err := uuid.Parse(walletID)
	if err != nil {
		return nil, ErrWalletNotFound
	}
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT id, wallet_id, type, amount, created_at
        FROM operations WHERE wallet_id = $1 ORDER BY created_at DESC, id`, id)
	if err != nil {
		return nil, storageErr("list operations", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var (
			op       Operation
			opID     uuid.UUID
			opWallet uuid.UUID
			created  time.Time
		)
		if err := rows.Scan(&opID, &opWallet, &op.Type, &op.Amount, &created); err != nil {
			return nil, storageErr("scan operation", err)
		}
		op.ID = opID.String()
		op.WalletID = opWallet.String()
		op.CreatedAt = created.UTC()
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list operations", err)
	}
	return ops, nil
}

// LockWallet opens a transaction and takes the wallet's row lock. The
// returned handle holds the transaction open until Commit or Abort.
func (s *PostgresStore) LockWallet(ctx context.Context, id string) (LockedWallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrWalletNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storageErr("begin tx", err)
	}

	row := tx.QueryRow(ctx, `SELECT id, balance, created_at FROM wallets WHERE id = $1 FOR UPDATE`, walletID)
	w, err := scanWallet(row)
	if err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, storageErr("lock wallet", err)
	}

	return &postgresLockedWallet{tx: tx, wallet: w}, nil
}

type postgresLockedWallet struct {
	tx      pgx.Tx
	wallet  Wallet
	settled bool
}

func (l *postgresLockedWallet) Wallet() Wallet {
	return l.wallet
}

func (l *postgresLockedWallet) Commit(ctx context.Context, newBalance int64, op Operation) error {
	opID, err := uuid.Parse(op.ID)
	if err != nil {
		_ = l.tx.Rollback(ctx)
		l.settled = true
		return fmt.Errorf("invalid operation id: %w", err)
	}

	if _, err := l.tx.Exec(ctx, `UPDATE wallets SET balance = $2 WHERE id = $1`,
		uuid.MustParse(l.wallet.ID), newBalance); err != nil {
		_ = l.tx.Rollback(ctx)
		l.settled = true
		return storageErr("update balance", err)
	}

	if _, err := l.tx.Exec(ctx, `INSERT INTO operations (id, wallet_id, type, amount, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		opID, uuid.MustParse(l.wallet.ID), string(op.Type), op.Amount, op.CreatedAt.UTC()); err != nil {
		_ = l.tx.Rollback(ctx)
		l.settled = true
		return storageErr("append operation", err)
	}

	if err := l.tx.Commit(ctx); err != nil {
		l.settled = true
		return storageErr("commit", err)
	}
	l.settled = true
	return nil
}

func (l *postgresLockedWallet) Abort(ctx context.Context) error {
	if l.settled {
		return nil
	}
	l.settled = true
	if err := l.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return storageErr("rollback", err)
	}
	return nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w       Wallet
		id      uuid.UUID
		created time.Time
	)
	if err := row.Scan(&id, &w.Balance, &created); err != nil {
		return Wallet{}, err
	}
	w.ID = id.String()
	w.CreatedAt = created.UTC()
	return w, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
