package bundle

import "context"

type Repository interface {
	// Create inserts the bundle together with its asset index rows.
	Create(ctx context.Context, b *Bundle) error
	GetByID(ctx context.Context, bundleID uint64) (*Bundle, error)
	GetByIDForUpdate(ctx context.Context, bundleID uint64) (*Bundle, error)
	Save(ctx context.Context, b *Bundle) error
	// ResolveAsset returns the live bundle this asset is indexed to.
	ResolveAsset(ctx context.Context, collection string, assetID uint64) (*Bundle, error)
	AssetBundled(ctx context.Context, collection string, assetID uint64) (bool, error)
	// Delete removes the bundle record and all its index rows in one step.
	Delete(ctx context.Context, b *Bundle) error
}
