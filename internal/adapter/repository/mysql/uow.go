package mysql

import (
	"context"

	custodyAdapter "nftlend-backend/internal/adapter/custody"
	ledgerAdapter "nftlend-backend/internal/adapter/ledger"
	"nftlend-backend/internal/domain/bundle"
	"nftlend-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct {
	db      *gorm.DB
	custody *custodyAdapter.Registry
	ledger  *ledgerAdapter.Ledger
}

func NewGormUoW(db *gorm.DB, engineAddress string) *GormUoW {
	return &GormUoW{
		db:      db,
		custody: custodyAdapter.NewRegistry(db, engineAddress),
		ledger:  ledgerAdapter.NewLedger(db, engineAddress),
	}
}

func (u *GormUoW) repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Bundles: &BundleRepository{db: tx},
		Events:  &EventRepository{db: tx},
		Custody: u.custody.WithTx(tx),
		Ledger:  u.ledger.WithTx(tx),
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(u.repos(tx))
	})
}

func (u *GormUoW) WithinBundleTx(ctx context.Context, bundleID uint64, fn func(r uow.Repos, b *bundle.Bundle) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := u.repos(tx)
		// lock the bundle row up-front to prevent races
		b, err := r.Bundles.GetByIDForUpdate(ctx, bundleID)
		if err != nil {
			return err
		}
		return fn(r, b)
	})
}
