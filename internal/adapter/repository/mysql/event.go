package mysql

import (
	"context"

	eventDomain "nftlend-backend/internal/domain/event"

	"gorm.io/gorm"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Append(ctx context.Context, rec *eventDomain.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *EventRepository) ListByBundleID(ctx context.Context, bundleID uint64) ([]eventDomain.Record, error) {
	var out []eventDomain.Record
	err := r.db.WithContext(ctx).
		Where("bundle_id = ?", bundleID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
