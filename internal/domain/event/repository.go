package event

import "context"

type Repository interface {
	Append(ctx context.Context, rec *Record) error
	ListByBundleID(ctx context.Context, bundleID uint64) ([]Record, error)
}
