package mysql

import (
	"context"

	bundleDomain "nftlend-backend/internal/domain/bundle"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BundleRepository struct{ db *gorm.DB }

func NewBundleRepository(db *gorm.DB) *BundleRepository { return &BundleRepository{db: db} }

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *BundleRepository) Tx(ctx context.Context, fn func(repo bundleDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BundleRepository{db: tx})
	})
}

// Create inserts the bundle row and its bundle_assets index rows in one go
// (gorm cascades the association create).
func (r *BundleRepository) Create(ctx context.Context, b *bundleDomain.Bundle) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BundleRepository) Save(ctx context.Context, b *bundleDomain.Bundle) error {
	return r.db.WithContext(ctx).Omit("Assets").Save(b).Error
}

func (r *BundleRepository) GetByID(ctx context.Context, bundleID uint64) (*bundleDomain.Bundle, error) {
	var out bundleDomain.Bundle
	res := r.db.WithContext(ctx).
		Preload("Assets", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", bundleID).
		First(&out)
	return &out, res.Error
}

func (r *BundleRepository) GetByIDForUpdate(ctx context.Context, bundleID uint64) (*bundleDomain.Bundle, error) {
	var out bundleDomain.Bundle
	q := r.db.WithContext(ctx)
	// sqlite (tests) has no FOR UPDATE; the tx itself serializes there
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	res := q.
		Where("id = ?", bundleID).
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	// association rows are loaded outside the locking clause
	err := r.db.WithContext(ctx).
		Where("bundle_id = ?", out.ID).
		Order("position ASC").
		Find(&out.Assets).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BundleRepository) ResolveAsset(ctx context.Context, collection string, assetID uint64) (*bundleDomain.Bundle, error) {
	var idx bundleDomain.BundleAsset
	res := r.db.WithContext(ctx).
		Where("collection = ? AND asset_id = ?", collection, assetID).
		First(&idx)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetByID(ctx, idx.BundleID)
}

func (r *BundleRepository) AssetBundled(ctx context.Context, collection string, assetID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&bundleDomain.BundleAsset{}).
		Where("collection = ? AND asset_id = ?", collection, assetID).
		Count(&n).Error
	return n > 0, err
}

// Delete removes every index row pointing at the bundle (hard delete, so the
// assets become bundleable again) and soft-deletes the bundle record itself,
// keeping its id burned: auto-increment never hands it out again.
func (r *BundleRepository) Delete(ctx context.Context, b *bundleDomain.Bundle) error {
	if err := r.db.WithContext(ctx).
		Where("bundle_id = ?", b.ID).
		Delete(&bundleDomain.BundleAsset{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(b).Error
}
