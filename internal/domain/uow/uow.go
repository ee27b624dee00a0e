package uow

import (
	"context"

	"nftlend-backend/internal/domain/bundle"
	"nftlend-backend/internal/domain/custody"
	"nftlend-backend/internal/domain/event"
	"nftlend-backend/internal/domain/payment"
)

// Repos bundles every port that can join a transaction. The custody registry
// and the payment ledger are platform-owned tables, so binding them to the
// same tx as the bundle records is what gives each engine operation its
// all-or-nothing semantics.
type Repos struct {
	Bundles bundle.Repository
	Events  event.Repository
	Custody custody.Registry
	Ledger  payment.Ledger
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the bundle row first, then pass it in
	WithinBundleTx(ctx context.Context, bundleID uint64, fn func(r Repos, b *bundle.Bundle) error) error
}
