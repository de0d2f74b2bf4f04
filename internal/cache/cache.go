// Package cache provides a read-through cache for the item catalog. The
// catalog is read on every order create and availability check, so a cheap
// cache in front of the store pays for itself quickly.
package cache

import (
	"context"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
)

// ItemCache caches the full item catalog keyed by item ID. Implementations
// must tolerate being handed stale or missing entries; callers always fall
// back to the store on a miss.
type ItemCache interface {
	GetItems(ctx context.Context) ([]domain.Item, bool)
	SetItems(ctx context.Context, items []domain.Item)
	Invalidate(ctx context.Context)
}

// NoopItemCache misses every read. Used when no Redis address is configured.
type NoopItemCache struct{}

func (NoopItemCache) GetItems(ctx context.Context) ([]domain.Item, bool) { return nil, false }
func (NoopItemCache) SetItems(ctx context.Context, items []domain.Item)  {}
func (NoopItemCache) Invalidate(ctx context.Context)                     {}
