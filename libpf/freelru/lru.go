// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package freelru wraps go-freelru.LRU with usage statistics.
package freelru // import "go.opentelemetry.io/stackprof/libpf/freelru"

import (
	"math/bits"

	lru "github.com/elastic/go-freelru"
	"github.com/zeebo/xxh3"
)

// LRU is a go-freelru.LRU that counts hits, misses and evictions.
// It is not safe for concurrent use.
type LRU[K comparable, V any] struct {
	lru   *lru.LRU[K, V]
	stats Statistics
}

type Statistics struct {
	// Number of lookups that found an entry.
	Hit uint64
	// Number of lookups that found nothing.
	Miss uint64
	// Number of entries added.
	Added uint64
	// Number of entries evicted to make room for new ones.
	Evicted uint64
}

// New creates an LRU holding at most capacity entries.
func New[K comparable, V any](capacity uint32, hash lru.HashKeyCallback[K]) (*LRU[K, V], error) {
	cache, err := lru.New[K, V](capacity, hash)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{lru: cache}, nil
}

func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	evicted = c.lru.Add(key, value)
	if evicted {
		c.stats.Evicted++
	}
	c.stats.Added++
	return evicted
}

func (c *LRU[K, V]) Get(key K) (value V, ok bool) {
	value, ok = c.lru.Get(key)
	if ok {
		c.stats.Hit++
	} else {
		c.stats.Miss++
	}
	return value, ok
}

func (c *LRU[K, V]) Len() int {
	return c.lru.Len()
}

// Statistics returns the counters accumulated since creation.
func (c *LRU[K, V]) Statistics() Statistics {
	return c.stats
}

// HashStrings combines the hashes of a and b. Swapping a and b changes the
// result.
func HashStrings(a, b string) uint32 {
	return fold(xxh3.HashString(a) ^ bits.RotateLeft64(xxh3.HashString(b), 17))
}

func fold(h uint64) uint32 {
	return uint32(h ^ h>>32)
}
