package custody

import (
	"context"
	"errors"
)

var (
	ErrAssetNotFound        = errors.New("asset not found in registry")
	ErrNotAssetOwner        = errors.New("caller does not own asset")
	ErrCollectionNotAllowed = errors.New("collection is not allow-listed")
	ErrNotInCustody         = errors.New("asset is not held by the engine")
)

// Registry is the engine's view of the external NFT registry. The engine only
// ever verifies ownership, pulls an asset into its own custody, or pushes one
// back out; it never touches the registry's records directly.
type Registry interface {
	OwnerOf(ctx context.Context, collection string, assetID uint64) (string, error)
	// Pull moves the asset from its current holder into engine custody.
	// Fails with ErrNotAssetOwner when from is not the current holder.
	Pull(ctx context.Context, collection string, assetID uint64, from string) error
	// Push releases an escrowed asset from engine custody to the recipient.
	Push(ctx context.Context, collection string, assetID uint64, to string) error
	CollectionAllowed(ctx context.Context, collection string) (bool, error)
}
