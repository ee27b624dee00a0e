package loan

import (
	"context"
	"errors"
	"strings"
	"time"

	domainBundle "nftlend-backend/internal/domain/bundle"
	domainEvent "nftlend-backend/internal/domain/event"
	"nftlend-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type Usecase struct {
	uow uow.UnitOfWork
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork) *Usecase {
	return &Usecase{uow: tx, now: func() time.Time { return time.Now().UTC() }}
}

// SetNowFunc overrides the clock; tests use it for deterministic expiry.
func (u *Usecase) SetNowFunc(now func() time.Time) {
	if now != nil {
		u.now = now
	}
}

type ActivationDTO struct {
	BundleID    uint64    `json:"bundle_id"`
	Borrower    string    `json:"borrower"`
	UpfrontFee  uint64    `json:"upfront_fee"`
	ActivatedAt time.Time `json:"activated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ReclaimDTO struct {
	BundleID         uint64 `json:"bundle_id"`
	Owner            string `json:"owner"`
	Assets           int    `json:"assets_returned"`
	RewardsDisbursed uint64 `json:"rewards_disbursed"`
}

// Activate starts the loan: the borrower pays the up-front fee straight to
// the owner (never escrowed) and takes over usage rights for the period.
func (u *Usecase) Activate(ctx context.Context, bundleID uint64, borrower string) (*ActivationDTO, error) {
	borrower = strings.ToLower(borrower)
	var dto *ActivationDTO

	err := u.uow.WithinBundleTx(ctx, bundleID, func(r uow.Repos, b *domainBundle.Bundle) error {
		// State guard: a bundle activates exactly once.
		if b.IsActive {
			return domainBundle.ErrAlreadyActive
		}

		if err := r.Ledger.Pull(ctx, borrower, b.Owner, b.UpfrontFee); err != nil {
			return err
		}

		now := u.now()
		b.IsActive = true
		b.Borrower = borrower
		b.ActivatedAt = &now
		if err := r.Bundles.Save(ctx, b); err != nil {
			return err
		}

		rec, err := domainEvent.New(domainEvent.TypeLoanActivated, b.ID, map[string]any{
			"borrower":     borrower,
			"owner":        b.Owner,
			"upfront_fee":  b.UpfrontFee,
			"activated_at": now,
			"expires_at":   b.ExpiresAt(),
		})
		if err != nil {
			return err
		}
		if err := r.Events.Append(ctx, rec); err != nil {
			return err
		}

		dto = &ActivationDTO{
			BundleID:    b.ID,
			Borrower:    borrower,
			UpfrontFee:  b.UpfrontFee,
			ActivatedAt: now,
			ExpiresAt:   b.ExpiresAt(),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainBundle.ErrNotFound
		}
		return nil, err
	}
	return dto, nil
}

// Reclaim releases the escrowed assets back to the owner once the period has
// elapsed (boundary inclusive) and deletes the bundle. Any undisbursed reward
// balance is flushed with the usual split first. Any caller may trigger it;
// the assets always flow to the owner regardless.
func (u *Usecase) Reclaim(ctx context.Context, bundleID uint64, caller string) (*ReclaimDTO, error) {
	caller = strings.ToLower(caller)
	var dto *ReclaimDTO

	err := u.uow.WithinBundleTx(ctx, bundleID, func(r uow.Repos, b *domainBundle.Bundle) error {
		if !b.IsActive {
			return domainBundle.ErrNotActive
		}
		if u.now().Before(b.ExpiresAt()) {
			return domainBundle.ErrStillActive
		}

		// flush any undisbursed balance with the usual split, so deleting
		// the bundle cannot strand funds in engine escrow
		flushed := b.AccruedRewards
		borrowerShare, ownerShare := domainBundle.SplitRewards(flushed, b.RewardSharePercent)
		b.AccruedRewards = 0
		if borrowerShare > 0 {
			if err := r.Ledger.PayOut(ctx, b.Borrower, borrowerShare); err != nil {
				return err
			}
		}
		if ownerShare > 0 {
			if err := r.Ledger.PayOut(ctx, b.Owner, ownerShare); err != nil {
				return err
			}
		}

		assetIDs := make([]uint64, 0, len(b.Assets))
		for _, a := range b.Assets {
			if err := r.Custody.Push(ctx, a.Collection, a.AssetID, b.Owner); err != nil {
				return err
			}
			assetIDs = append(assetIDs, a.AssetID)
		}

		if err := r.Bundles.Delete(ctx, b); err != nil {
			return err
		}

		rec, err := domainEvent.New(domainEvent.TypeBundleReclaimed, b.ID, map[string]any{
			"owner":             b.Owner,
			"borrower":          b.Borrower,
			"caller":            caller,
			"asset_ids":         assetIDs,
			"rewards_disbursed": flushed,
		})
		if err != nil {
			return err
		}
		if err := r.Events.Append(ctx, rec); err != nil {
			return err
		}

		dto = &ReclaimDTO{BundleID: b.ID, Owner: b.Owner, Assets: len(assetIDs), RewardsDisbursed: flushed}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainBundle.ErrNotFound
		}
		return nil, err
	}
	return dto, nil
}
