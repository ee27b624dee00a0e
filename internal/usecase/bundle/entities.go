package bundle

import (
	"time"

	domainBundle "nftlend-backend/internal/domain/bundle"
)

type CreateBundleInput struct {
	Caller             string   `json:"-"`
	Collection         string   `json:"collection"`
	AssetIDs           []uint64 `json:"asset_ids"`
	UpfrontFee         uint64   `json:"upfront_fee"`
	RewardSharePercent uint8    `json:"reward_share_percent"`
	PeriodSeconds      int64    `json:"period_seconds"`
}

type AssetDTO struct {
	Collection string `json:"collection"`
	AssetID    uint64 `json:"asset_id"`
}

type BundleDTO struct {
	BundleID           uint64     `json:"bundle_id"`
	Owner              string     `json:"owner"`
	Assets             []AssetDTO `json:"assets"`
	UpfrontFee         uint64     `json:"upfront_fee"`
	RewardSharePercent uint8      `json:"reward_share_percent"`
	PeriodSeconds      int64      `json:"period_seconds"`
	State              string     `json:"state"`
	Borrower           string     `json:"borrower,omitempty"`
	ActivatedAt        *time.Time `json:"activated_at,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	AccruedRewards     uint64     `json:"accrued_rewards"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toDTO(b *domainBundle.Bundle, now time.Time) *BundleDTO {
	dto := &BundleDTO{
		BundleID:           b.ID,
		Owner:              b.Owner,
		UpfrontFee:         b.UpfrontFee,
		RewardSharePercent: b.RewardSharePercent,
		PeriodSeconds:      b.PeriodSeconds,
		State:              string(b.StateAt(now)),
		Borrower:           b.Borrower,
		ActivatedAt:        b.ActivatedAt,
		AccruedRewards:     b.AccruedRewards,
		CreatedAt:          b.CreatedAt,
	}
	if b.ActivatedAt != nil {
		exp := b.ExpiresAt()
		dto.ExpiresAt = &exp
	}
	for _, a := range b.Assets {
		dto.Assets = append(dto.Assets, AssetDTO{Collection: a.Collection, AssetID: a.AssetID})
	}
	return dto
}
