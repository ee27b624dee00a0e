package paymentmock

import "context"

// Ledger is a function-backed mock for the payment port.
type Ledger struct {
	PullFn       func(ctx context.Context, from, to string, amount uint64) error
	PullToSelfFn func(ctx context.Context, from string, amount uint64) error
	PayOutFn     func(ctx context.Context, to string, amount uint64) error
}

func (m *Ledger) Pull(ctx context.Context, from, to string, amount uint64) error {
	if m.PullFn != nil {
		return m.PullFn(ctx, from, to, amount)
	}
	return nil
}

func (m *Ledger) PullToSelf(ctx context.Context, from string, amount uint64) error {
	if m.PullToSelfFn != nil {
		return m.PullToSelfFn(ctx, from, amount)
	}
	return nil
}

func (m *Ledger) PayOut(ctx context.Context, to string, amount uint64) error {
	if m.PayOutFn != nil {
		return m.PayOutFn(ctx, to, amount)
	}
	return nil
}
