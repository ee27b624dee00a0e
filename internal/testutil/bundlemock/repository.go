package bundlemock

import (
	"context"

	domain "nftlend-backend/internal/domain/bundle"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn           func(ctx context.Context, b *domain.Bundle) error
	GetByIDFn          func(ctx context.Context, bundleID uint64) (*domain.Bundle, error)
	GetByIDForUpdateFn func(ctx context.Context, bundleID uint64) (*domain.Bundle, error)
	SaveFn             func(ctx context.Context, b *domain.Bundle) error
	ResolveAssetFn     func(ctx context.Context, collection string, assetID uint64) (*domain.Bundle, error)
	AssetBundledFn     func(ctx context.Context, collection string, assetID uint64) (bool, error)
	DeleteFn           func(ctx context.Context, b *domain.Bundle) error
}

func (m *Repo) Create(ctx context.Context, b *domain.Bundle) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, bundleID uint64) (*domain.Bundle, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, bundleID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, bundleID uint64) (*domain.Bundle, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, bundleID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, b *domain.Bundle) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, b)
	}
	return nil
}

func (m *Repo) ResolveAsset(ctx context.Context, collection string, assetID uint64) (*domain.Bundle, error) {
	if m.ResolveAssetFn != nil {
		return m.ResolveAssetFn(ctx, collection, assetID)
	}
	return nil, context.Canceled
}

func (m *Repo) AssetBundled(ctx context.Context, collection string, assetID uint64) (bool, error) {
	if m.AssetBundledFn != nil {
		return m.AssetBundledFn(ctx, collection, assetID)
	}
	return false, nil
}

func (m *Repo) Delete(ctx context.Context, b *domain.Bundle) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, b)
	}
	return nil
}
