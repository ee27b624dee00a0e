package event

import (
	"encoding/json"
	"time"

	"nftlend-backend/pkg/id"
)

// Canonical journal entry types, one per engine state transition.
const (
	TypeBundleCreated   = "bundle.created"
	TypeLoanActivated   = "loan.activated"
	TypeRewardsCredited = "rewards.credited"
	TypeRewardsClaimed  = "rewards.claimed"
	TypeBundleReclaimed = "bundle.reclaimed"
)

// Record is one append-only journal row. Rows are written inside the same
// transaction as the state change they describe, so the journal and the
// engine state can never disagree.
type Record struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	EventID   string    `gorm:"size:32;uniqueIndex:ux_engine_events_event_id" json:"event_id"`
	Type      string    `gorm:"size:64;index:idx_engine_events_type" json:"type"`
	BundleID  uint64    `gorm:"column:bundle_id;index:idx_engine_events_bundle" json:"bundle_id"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Record) TableName() string { return "engine_events" }

// New builds a journal record with a fresh event id and a JSON payload.
func New(eventType string, bundleID uint64, payload any) (*Record, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Record{
		EventID:  id.NewID32(),
		Type:     eventType,
		BundleID: bundleID,
		Payload:  string(body),
	}, nil
}
