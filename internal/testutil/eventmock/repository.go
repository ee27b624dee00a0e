package eventmock

import (
	"context"
	"sync"

	domain "nftlend-backend/internal/domain/event"
)

// Repo collects appended journal records in memory so tests can assert on
// what was emitted.
type Repo struct {
	mu      sync.Mutex
	Records []domain.Record

	AppendFn func(ctx context.Context, rec *domain.Record) error
}

func (m *Repo) Append(ctx context.Context, rec *domain.Record) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *Repo) ListByBundleID(ctx context.Context, bundleID uint64) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Record
	for _, r := range m.Records {
		if r.BundleID == bundleID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Types returns the emitted event types in order.
func (m *Repo) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Records))
	for _, r := range m.Records {
		out = append(out, r.Type)
	}
	return out
}
