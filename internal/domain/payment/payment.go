package payment

import (
	"context"
	"errors"
)

var (
	ErrNoAccount           = errors.New("payment account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Ledger is the engine's view of the fungible payment asset. Up-front fees
// move payer -> payee directly; reward pools move through the engine's own
// account via PullToSelf/PayOut.
type Ledger interface {
	Pull(ctx context.Context, from, to string, amount uint64) error
	PullToSelf(ctx context.Context, from string, amount uint64) error
	PayOut(ctx context.Context, to string, amount uint64) error
}
