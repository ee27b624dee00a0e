package custodymock

import "context"

// Registry is a function-backed mock for the custody port.
type Registry struct {
	OwnerOfFn           func(ctx context.Context, collection string, assetID uint64) (string, error)
	PullFn              func(ctx context.Context, collection string, assetID uint64, from string) error
	PushFn              func(ctx context.Context, collection string, assetID uint64, to string) error
	CollectionAllowedFn func(ctx context.Context, collection string) (bool, error)
}

func (m *Registry) OwnerOf(ctx context.Context, collection string, assetID uint64) (string, error) {
	if m.OwnerOfFn != nil {
		return m.OwnerOfFn(ctx, collection, assetID)
	}
	return "", context.Canceled
}

func (m *Registry) Pull(ctx context.Context, collection string, assetID uint64, from string) error {
	if m.PullFn != nil {
		return m.PullFn(ctx, collection, assetID, from)
	}
	return nil
}

func (m *Registry) Push(ctx context.Context, collection string, assetID uint64, to string) error {
	if m.PushFn != nil {
		return m.PushFn(ctx, collection, assetID, to)
	}
	return nil
}

func (m *Registry) CollectionAllowed(ctx context.Context, collection string) (bool, error) {
	if m.CollectionAllowedFn != nil {
		return m.CollectionAllowedFn(ctx, collection)
	}
	return true, nil
}
