package rewards

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"nftlend-backend/internal/domain/access"
	domainBundle "nftlend-backend/internal/domain/bundle"
	domainEvent "nftlend-backend/internal/domain/event"
	"nftlend-backend/internal/domain/uow"

	"gorm.io/gorm"
)

var (
	ErrEmptyBatch     = errors.New("reward batch is empty")
	ErrLengthMismatch = errors.New("asset_ids and amounts length mismatch")
	ErrAmountOverflow = errors.New("reward amounts overflow")
)

type Usecase struct {
	uow  uow.UnitOfWork
	gate access.Gate
	now  func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, gate access.Gate) *Usecase {
	return &Usecase{uow: tx, gate: gate, now: func() time.Time { return time.Now().UTC() }}
}

// SetNowFunc overrides the clock used for DTO timestamps.
func (u *Usecase) SetNowFunc(now func() time.Time) {
	if now != nil {
		u.now = now
	}
}

type CreditInput struct {
	Caller     string   `json:"-"`
	Collection string   `json:"collection"`
	AssetIDs   []uint64 `json:"asset_ids"`
	Amounts    []uint64 `json:"amounts"`
}

type CreditDTO struct {
	Collection string   `json:"collection"`
	AssetIDs   []uint64 `json:"asset_ids"`
	Amounts    []uint64 `json:"amounts"`
	Total      uint64   `json:"total"`
	// PaidOut is the part that went straight to owners of un-loaned bundles;
	// Accrued stayed in engine custody against active bundles.
	PaidOut uint64 `json:"paid_out"`
	Accrued uint64 `json:"accrued"`
}

type ClaimDTO struct {
	BundleID      uint64 `json:"bundle_id"`
	Total         uint64 `json:"total"`
	BorrowerShare uint64 `json:"borrower_share"`
	OwnerShare    uint64 `json:"owner_share"`
}

// Credit routes a reward batch to the bundles behind the given assets.
// All-or-nothing: every asset is resolved to a live bundle before any money
// moves, then the batch total is pulled from the caller and applied: shares
// for un-loaned bundles pay the owner immediately, shares for active loans
// accrue on the bundle for a later claim.
func (u *Usecase) Credit(ctx context.Context, in CreditInput) (*CreditDTO, error) {
	in.Caller = strings.ToLower(in.Caller)
	in.Collection = strings.ToLower(in.Collection)

	if in.Caller != u.gate.OwnerAddress() && !u.gate.IsAdmin(in.Caller) {
		return nil, access.ErrNotAuthorized
	}
	if len(in.AssetIDs) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(in.AssetIDs) != len(in.Amounts) {
		return nil, ErrLengthMismatch
	}

	var dto *CreditDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// Phase one: resolve everything, touch nothing.
		perBundle := make(map[uint64]uint64)
		perBundleAssets := make(map[uint64][]uint64)
		var bundleOrder []uint64
		var total uint64
		for i, assetID := range in.AssetIDs {
			b, err := r.Bundles.ResolveAsset(ctx, in.Collection, assetID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domainBundle.ErrNotFound
				}
				return err
			}
			if in.Amounts[i] > math.MaxUint64-total {
				return ErrAmountOverflow
			}
			if _, ok := perBundle[b.ID]; !ok {
				bundleOrder = append(bundleOrder, b.ID)
			}
			perBundle[b.ID] += in.Amounts[i]
			perBundleAssets[b.ID] = append(perBundleAssets[b.ID], assetID)
			total += in.Amounts[i]
		}

		if err := r.Ledger.PullToSelf(ctx, in.Caller, total); err != nil {
			return err
		}

		// Phase two: apply per bundle. Each bundle is re-fetched under a row
		// lock before it is mutated, the same serialization every other
		// mutating operation takes, so a concurrent claim cannot be stomped.
		var paidOut, accrued uint64
		for _, bundleID := range bundleOrder {
			amount := perBundle[bundleID]
			b, err := r.Bundles.GetByIDForUpdate(ctx, bundleID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domainBundle.ErrNotFound
				}
				return err
			}
			if !b.IsActive {
				// rewards for un-loaned assets never accrue, they pay out now
				if err := r.Ledger.PayOut(ctx, b.Owner, amount); err != nil {
					return err
				}
				paidOut += amount
			} else {
				if amount > math.MaxUint64-b.AccruedRewards {
					return ErrAmountOverflow
				}
				b.AccruedRewards += amount
				if err := r.Bundles.Save(ctx, b); err != nil {
					return err
				}
				accrued += amount
			}

			rec, err := domainEvent.New(domainEvent.TypeRewardsCredited, bundleID, map[string]any{
				"caller":     in.Caller,
				"collection": in.Collection,
				"asset_ids":  perBundleAssets[bundleID],
				"amount":     amount,
				"accrued":    b.IsActive,
			})
			if err != nil {
				return err
			}
			if err := r.Events.Append(ctx, rec); err != nil {
				return err
			}
		}

		dto = &CreditDTO{
			Collection: in.Collection,
			AssetIDs:   in.AssetIDs,
			Amounts:    in.Amounts,
			Total:      total,
			PaidOut:    paidOut,
			Accrued:    accrued,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Claim disburses the entire accrued balance of a bundle: the borrower gets
// floor(total*pct/100), the owner the remainder. Either party may trigger
// it, and claiming a zero balance is a valid no-op. The zeroed balance is
// persisted before the payouts are issued.
func (u *Usecase) Claim(ctx context.Context, bundleID uint64, caller string) (*ClaimDTO, error) {
	caller = strings.ToLower(caller)
	var dto *ClaimDTO

	err := u.uow.WithinBundleTx(ctx, bundleID, func(r uow.Repos, b *domainBundle.Bundle) error {
		if caller != b.Owner && (b.Borrower == "" || caller != b.Borrower) {
			return access.ErrNotAuthorized
		}

		total := b.AccruedRewards
		borrowerShare, ownerShare := domainBundle.SplitRewards(total, b.RewardSharePercent)
		if b.Borrower == "" {
			borrowerShare, ownerShare = 0, total
		}

		b.AccruedRewards = 0
		if err := r.Bundles.Save(ctx, b); err != nil {
			return err
		}

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

		rec, err := domainEvent.New(domainEvent.TypeRewardsClaimed, b.ID, map[string]any{
			"caller":         caller,
			"total":          total,
			"borrower_share": borrowerShare,
			"owner_share":    ownerShare,
		})
		if err != nil {
			return err
		}
		if err := r.Events.Append(ctx, rec); err != nil {
			return err
		}

		dto = &ClaimDTO{
			BundleID:      b.ID,
			Total:         total,
			BorrowerShare: borrowerShare,
			OwnerShare:    ownerShare,
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
