package custody

import (
	"context"
	"errors"
	"time"

	custodyDomain "nftlend-backend/internal/domain/custody"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistryAsset is one NFT row of the platform's asset registry. Holder is
// whichever address currently has custody, the engine included.
type RegistryAsset struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	Collection string    `gorm:"size:40;uniqueIndex:ux_registry_assets_key"`
	AssetID    uint64    `gorm:"column:asset_id;uniqueIndex:ux_registry_assets_key"`
	Holder     string    `gorm:"size:40;index:idx_registry_assets_holder"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (RegistryAsset) TableName() string { return "registry_assets" }

// AllowedCollection is the allow-list of collections the engine accepts.
type AllowedCollection struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	Collection string    `gorm:"size:40;uniqueIndex:ux_allowed_collections_collection"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (AllowedCollection) TableName() string { return "allowed_collections" }

// Registry implements custody.Registry on top of the registry tables.
type Registry struct {
	db     *gorm.DB
	engine string
}

func NewRegistry(db *gorm.DB, engineAddress string) *Registry {
	return &Registry{db: db, engine: engineAddress}
}

// WithTx binds the registry to an open transaction.
func (r *Registry) WithTx(tx *gorm.DB) *Registry { return &Registry{db: tx, engine: r.engine} }

func (r *Registry) OwnerOf(ctx context.Context, collection string, assetID uint64) (string, error) {
	asset, err := r.get(ctx, collection, assetID, false)
	if err != nil {
		return "", err
	}
	return asset.Holder, nil
}

func (r *Registry) Pull(ctx context.Context, collection string, assetID uint64, from string) error {
	asset, err := r.get(ctx, collection, assetID, true)
	if err != nil {
		return err
	}
	if asset.Holder != from {
		return custodyDomain.ErrNotAssetOwner
	}
	asset.Holder = r.engine
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *Registry) Push(ctx context.Context, collection string, assetID uint64, to string) error {
	asset, err := r.get(ctx, collection, assetID, true)
	if err != nil {
		return err
	}
	if asset.Holder != r.engine {
		return custodyDomain.ErrNotInCustody
	}
	asset.Holder = to
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *Registry) CollectionAllowed(ctx context.Context, collection string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&AllowedCollection{}).
		Where("collection = ?", collection).
		Count(&n).Error
	return n > 0, err
}

func (r *Registry) get(ctx context.Context, collection string, assetID uint64, forUpdate bool) (*RegistryAsset, error) {
	var asset RegistryAsset
	q := r.db.WithContext(ctx)
	// sqlite (tests) has no FOR UPDATE; the tx itself serializes there
	if forUpdate && r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	res := q.Where("collection = ? AND asset_id = ?", collection, assetID).First(&asset)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, custodyDomain.ErrAssetNotFound
		}
		return nil, res.Error
	}
	return &asset, nil
}

// AllowCollection adds a collection to the allow-list (admin bootstrapping).
func (r *Registry) AllowCollection(ctx context.Context, collection string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&AllowedCollection{Collection: collection}).Error
}

// MintAsset registers an NFT with its initial holder. Seeding and tests.
func (r *Registry) MintAsset(ctx context.Context, collection string, assetID uint64, holder string) error {
	return r.db.WithContext(ctx).
		Create(&RegistryAsset{Collection: collection, AssetID: assetID, Holder: holder}).Error
}
