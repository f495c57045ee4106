package wallet

import (
	"errors"
	"fmt"

	"github.com/quillpay/quillpay/internal/ledger"
)

var (
	// ErrInvalidOperationType occurs when the requested type is outside the
	// DEPOSIT/WITHDRAW enumeration.
	ErrInvalidOperationType = errors.New("invalid operation type")

	// ErrInvalidAmount occurs when the requested amount is negative.
	ErrInvalidAmount = errors.New("invalid amount")
)

// ValidateOperation checks the shape of a requested operation. It is pure and
// runs before any lock is acquired, so invalid input never reaches the store.
func ValidateOperation(rawType string, amount int64) (ledger.OperationType, error) {
	typ := ledger.OperationType(rawType)
	if !typ.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperationType, rawType)
	}
	if amount < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	return typ, nil
}
