package bundle

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Lifecycle state of a bundle. Expired is derived from the clock, never stored.
type State string

const (
	StateListed  State = "listed"
	StateActive  State = "active"
	StateExpired State = "expired"
)

var (
	ErrNotFound            = errors.New("bundle not found")
	ErrAlreadyActive       = errors.New("bundle already has an active loan")
	ErrNotActive           = errors.New("bundle has no active loan")
	ErrStillActive         = errors.New("loan period has not elapsed yet")
	ErrAssetAlreadyBundled = errors.New("asset already belongs to a live bundle")
	ErrPeriodOutOfRange    = errors.New("loan period outside configured bounds")
	ErrEmptyAssetList      = errors.New("bundle needs at least one asset")
	ErrShareOutOfRange     = errors.New("reward share percent must be 0..100")
)

// Bundle is a group of escrowed NFTs loaned out as one unit. The numeric
// primary key doubles as the public bundle id: auto-increment keeps it
// monotonic and the soft delete keeps reclaimed ids burned forever.
type Bundle struct {
	ID                 uint64         `gorm:"primaryKey;column:id" json:"bundle_id"`
	Owner              string         `gorm:"size:40;index:idx_bundles_owner" json:"owner"`
	UpfrontFee         uint64         `gorm:"column:upfront_fee" json:"upfront_fee"`
	RewardSharePercent uint8          `gorm:"column:reward_share_percent" json:"reward_share_percent"`
	PeriodSeconds      int64          `gorm:"column:period_seconds" json:"period_seconds"`
	IsActive           bool           `gorm:"column:is_active;default:false" json:"is_active"`
	Borrower           string         `gorm:"size:40" json:"borrower,omitempty"`
	ActivatedAt        *time.Time     `gorm:"column:activated_at" json:"activated_at,omitempty"`
	AccruedRewards     uint64         `gorm:"column:accrued_rewards;default:0" json:"accrued_rewards"`
	Assets             []BundleAsset  `gorm:"foreignKey:BundleID" json:"assets"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Bundle) TableName() string { return "loan_bundles" }

// BundleAsset is one row of the asset -> bundle index. The engine owns this
// index instead of writing anything into the external registry's records.
// Rows are hard-deleted on reclamation so the unique index over
// (collection, asset_id) always means "one live bundle per asset".
type BundleAsset struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	BundleID   uint64    `gorm:"column:bundle_id;index:idx_bundle_assets_bundle" json:"-"`
	Collection string    `gorm:"size:40;uniqueIndex:ux_bundle_assets_asset" json:"collection"`
	AssetID    uint64    `gorm:"column:asset_id;uniqueIndex:ux_bundle_assets_asset" json:"asset_id"`
	Position   int       `gorm:"column:position" json:"position"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
}

func (BundleAsset) TableName() string { return "bundle_assets" }

// ExpiresAt returns the instant the loan period elapses. Zero time for a
// bundle that was never activated.
func (b *Bundle) ExpiresAt() time.Time {
	if b.ActivatedAt == nil {
		return time.Time{}
	}
	return b.ActivatedAt.Add(time.Duration(b.PeriodSeconds) * time.Second)
}

// Expired reports whether the loan period has elapsed, boundary inclusive.
func (b *Bundle) Expired(now time.Time) bool {
	return b.IsActive && !now.Before(b.ExpiresAt())
}

// StateAt derives the lifecycle state at the given instant.
func (b *Bundle) StateAt(now time.Time) State {
	switch {
	case !b.IsActive:
		return StateListed
	case b.Expired(now):
		return StateExpired
	default:
		return StateActive
	}
}

// SplitRewards distributes total between borrower and owner. The borrower
// gets floor(total*pct/100) and the owner keeps the remainder, so the two
// shares always reconcile to the full balance. Computed in two steps to stay
// exact even when total*pct would overflow uint64.
func SplitRewards(total uint64, pct uint8) (borrower, owner uint64) {
	p := uint64(pct)
	borrower = (total/100)*p + (total%100)*p/100
	owner = total - borrower
	return borrower, owner
}
