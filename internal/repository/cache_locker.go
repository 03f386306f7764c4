package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	drepo "SignalScan/internal/domain/repository"
	"SignalScan/pkg/cache"
)

// CacheLocker adapts a cache.Service (Redis or in-memory) to the Locker port.
type CacheLocker struct {
	cache cache.Service
}

var _ drepo.Locker = (*CacheLocker)(nil)

func NewCacheLocker(c cache.Service) *CacheLocker {
	return &CacheLocker{cache: c}
}

// TryLock returns cache.ErrLockHeld (wrapped) when key is owned elsewhere.
// The returned unlock releases only this caller's ownership.
func (l *CacheLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token, err := l.cache.TryLock(ctx, key, ttl)
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.cache.Unlock(ctx, key, token)
	}, nil
}
