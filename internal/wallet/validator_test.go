package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillpay/quillpay/internal/ledger"
)

func TestValidateOperation(t *testing.T) {
	cases := []struct {
		name    string
		rawType string
		amount  int64
		want    ledger.OperationType
		wantErr error
	}{
		{name: "deposit", rawType: "DEPOSIT", amount: 100, want: ledger.OperationDeposit},
		{name: "withdraw", rawType: "WITHDRAW", amount: 100, want: ledger.OperationWithdraw},
		{name: "zero amount", rawType: "DEPOSIT", amount: 0, want: ledger.OperationDeposit},
		{name: "unknown type", rawType: "TEST", amount: 500, wantErr: ErrInvalidOperationType},
		{name: "empty type", rawType: "", amount: 100, wantErr: ErrInvalidOperationType},
		{name: "lowercase type", rawType: "deposit", amount: 100, wantErr: ErrInvalidOperationType},
		{name: "negative amount", rawType: "DEPOSIT", amount: -100, wantErr: ErrInvalidAmount},
		{name: "negative withdraw", rawType: "WITHDRAW", amount: -1, wantErr: ErrInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typ, err := ValidateOperation(tc.rawType, tc.amount)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, typ)
		})
	}
}
