package bundle

import (
	"context"
	"errors"
	"strings"
	"time"

	domainBundle "nftlend-backend/internal/domain/bundle"
	domainCustody "nftlend-backend/internal/domain/custody"
	domainEvent "nftlend-backend/internal/domain/event"
	"nftlend-backend/internal/domain/uow"

	"gorm.io/gorm"
)

// Bounds is the configured window a loan period must fall into at creation.
type Bounds struct {
	MinPeriodSeconds int64
	MaxPeriodSeconds int64
}

type Usecase struct {
	repo   domainBundle.Repository
	uow    uow.UnitOfWork
	bounds Bounds
	now    func() time.Time
}

func NewUsecase(repo domainBundle.Repository, tx uow.UnitOfWork, bounds Bounds) *Usecase {
	return &Usecase{repo: repo, uow: tx, bounds: bounds, now: func() time.Time { return time.Now().UTC() }}
}

// SetNowFunc overrides the clock; tests use it for deterministic expiry.
func (u *Usecase) SetNowFunc(now func() time.Time) {
	if now != nil {
		u.now = now
	}
}

// Create escrows the caller's assets and lists them as one loan bundle.
// Ownership of every asset is verified by query before any pull is attempted,
// so a bad request is diagnosable without touching custody; the surrounding
// transaction makes the pulls themselves all-or-nothing.
func (u *Usecase) Create(ctx context.Context, in CreateBundleInput) (*BundleDTO, error) {
	in.Caller = strings.ToLower(in.Caller)
	in.Collection = strings.ToLower(in.Collection)

	if len(in.AssetIDs) == 0 {
		return nil, domainBundle.ErrEmptyAssetList
	}
	if in.RewardSharePercent > 100 {
		return nil, domainBundle.ErrShareOutOfRange
	}
	if in.PeriodSeconds < u.bounds.MinPeriodSeconds || in.PeriodSeconds > u.bounds.MaxPeriodSeconds {
		return nil, domainBundle.ErrPeriodOutOfRange
	}

	var dto *BundleDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		allowed, err := r.Custody.CollectionAllowed(ctx, in.Collection)
		if err != nil {
			return err
		}
		if !allowed {
			return domainCustody.ErrCollectionNotAllowed
		}

		seen := make(map[uint64]struct{}, len(in.AssetIDs))
		for _, assetID := range in.AssetIDs {
			if _, dup := seen[assetID]; dup {
				return domainBundle.ErrAssetAlreadyBundled
			}
			seen[assetID] = struct{}{}

			bundled, err := r.Bundles.AssetBundled(ctx, in.Collection, assetID)
			if err != nil {
				return err
			}
			if bundled {
				return domainBundle.ErrAssetAlreadyBundled
			}
			holder, err := r.Custody.OwnerOf(ctx, in.Collection, assetID)
			if err != nil {
				return err
			}
			if holder != in.Caller {
				return domainCustody.ErrNotAssetOwner
			}
		}

		for _, assetID := range in.AssetIDs {
			if err := r.Custody.Pull(ctx, in.Collection, assetID, in.Caller); err != nil {
				return err
			}
		}

		b := &domainBundle.Bundle{
			Owner:              in.Caller,
			UpfrontFee:         in.UpfrontFee,
			RewardSharePercent: in.RewardSharePercent,
			PeriodSeconds:      in.PeriodSeconds,
			IsActive:           false,
		}
		for i, assetID := range in.AssetIDs {
			b.Assets = append(b.Assets, domainBundle.BundleAsset{
				Collection: in.Collection,
				AssetID:    assetID,
				Position:   i,
			})
		}
		if err := r.Bundles.Create(ctx, b); err != nil {
			return err
		}

		rec, err := domainEvent.New(domainEvent.TypeBundleCreated, b.ID, map[string]any{
			"owner":                b.Owner,
			"collection":           in.Collection,
			"asset_ids":            in.AssetIDs,
			"upfront_fee":          b.UpfrontFee,
			"reward_share_percent": b.RewardSharePercent,
			"period_seconds":       b.PeriodSeconds,
		})
		if err != nil {
			return err
		}
		if err := r.Events.Append(ctx, rec); err != nil {
			return err
		}

		dto = toDTO(b, u.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, bundleID uint64) (*BundleDTO, error) {
	b, err := u.repo.GetByID(ctx, bundleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainBundle.ErrNotFound
		}
		return nil, err
	}
	return toDTO(b, u.now()), nil
}

// Resolve maps an asset to the live bundle it belongs to.
func (u *Usecase) Resolve(ctx context.Context, collection string, assetID uint64) (*BundleDTO, error) {
	b, err := u.repo.ResolveAsset(ctx, strings.ToLower(collection), assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainBundle.ErrNotFound
		}
		return nil, err
	}
	return toDTO(b, u.now()), nil
}

// HasAccess implements the exclusive usage rule: the owner iff no loan is
// active, the borrower iff one is. Every other address, the owner included
// while a loan runs, gets false. Unknown assets are simply false, not errors.
func (u *Usecase) HasAccess(ctx context.Context, collection string, assetID uint64, address string) (bool, error) {
	address = strings.ToLower(address)
	b, err := u.repo.ResolveAsset(ctx, strings.ToLower(collection), assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if b.IsActive {
		return address == b.Borrower, nil
	}
	return address == b.Owner, nil
}
