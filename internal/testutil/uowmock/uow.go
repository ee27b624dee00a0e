package uowmock

import (
	"context"

	"nftlend-backend/internal/domain/bundle"
	"nftlend-backend/internal/domain/uow"
)

// UoW runs the callback against a caller-supplied Repos set with no real
// transaction underneath. WithinBundleTx mimics the production helper by
// fetching the bundle through Repos.Bundles first.
type UoW struct {
	Repos uow.Repos

	WithinTxFn       func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinBundleTxFn func(ctx context.Context, bundleID uint64, fn func(r uow.Repos, b *bundle.Bundle) error) error
}

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if u.WithinTxFn != nil {
		return u.WithinTxFn(ctx, fn)
	}
	return fn(u.Repos)
}

func (u *UoW) WithinBundleTx(ctx context.Context, bundleID uint64, fn func(r uow.Repos, b *bundle.Bundle) error) error {
	if u.WithinBundleTxFn != nil {
		return u.WithinBundleTxFn(ctx, bundleID, fn)
	}
	b, err := u.Repos.Bundles.GetByIDForUpdate(ctx, bundleID)
	if err != nil {
		return err
	}
	return fn(u.Repos, b)
}
