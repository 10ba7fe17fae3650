// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"time"

	"github.com/geoquery/geoquery/utils/textutils"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Cache defaults matching the reference resolver behavior.
const (
	DefaultCacheTTL      = 600 * time.Second
	DefaultCacheCapacity = 100

	// providerTimeout bounds every upstream call regardless of the caller's
	// context, so a detached in-flight lookup can never run forever.
	providerTimeout = 10 * time.Second
)

// CachingGeocoder decorates a Geocoder with a TTL-bounded LRU cache and
// single-flight de-duplication of concurrent identical misses.
//
// Keys are trimmed, lowercased and accent-folded, so "Paris" and " paris "
// share an entry. Eviction is use-based (LRU): a hit refreshes recency.
// Negative results and provider failures are never cached; a transient
// failure must not poison future lookups for a plausibly valid location.
type CachingGeocoder struct {
	provider Geocoder
	cache    *lru.LRU[string, Result]
	group    singleflight.Group
}

// NewCachingGeocoder wraps provider with a cache of the given capacity and
// TTL. Zero values select the defaults.
func NewCachingGeocoder(provider Geocoder, capacity int, ttl time.Duration) *CachingGeocoder {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &CachingGeocoder{
		provider: provider,
		cache:    lru.NewLRU[string, Result](capacity, nil, ttl),
	}
}

// Geocode implements Geocoder. A cache hit within the TTL returns without
// touching the provider. On a miss, concurrent callers for the same key
// share one provider call; the call runs on a context detached from any
// single caller, so an abandoning caller stops waiting while a racing
// success still lands in the cache and is simply discarded by that caller.
func (c *CachingGeocoder) Geocode(ctx context.Context, location string) (*Result, error) {
	key := textutils.LowerASCIIFolding(location)

	if cached, ok := c.cache.Get(key); ok {
		return &cached, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), providerTimeout)
		defer cancel()

		result, err := c.provider.Geocode(fetchCtx, location)
		if err != nil {
			return nil, err
		}

		c.cache.Add(key, *result)

		return *result, nil
	})

	select {
	case <-ctx.Done():
		return nil, &Error{Type: ErrorTypeTimeout, Message: "geocoding abandoned", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		result := res.Val.(Result)

		return &result, nil
	}
}

// Len returns the number of live cache entries.
func (c *CachingGeocoder) Len() int {
	return c.cache.Len()
}

// Purge drops every cached entry.
func (c *CachingGeocoder) Purge() {
	c.cache.Purge()
}
