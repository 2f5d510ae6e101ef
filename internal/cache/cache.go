// Package cache holds short-lived derived counters. Ledger aggregates are
// never cached here; expected balances are always recomputed from the
// movement log.
package cache

import (
	"context"
	"time"
)

type CounterCache interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopCounterCache struct{}

func (NoopCounterCache) Get(_ context.Context, _ string) (int64, bool, error) {
	return 0, false, nil
}

func (NoopCounterCache) Set(_ context.Context, _ string, _ int64, _ time.Duration) error {
	return nil
}

func (NoopCounterCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
