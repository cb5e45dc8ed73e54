// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package session keeps per-user state (dashboard board, admin page cursor,
// notification inbox) in memory between requests.
//
// # Lifecycle
//
// Values are created lazily on first access and evicted after a period of
// inactivity by a background loop bound to the application context.
package session

import (
	"context"
	"sync"
	"time"
)

type item[T any] struct {
	value    T
	lastSeen time.Time
}

// Registry maps user ids to lazily created values of type T.
type Registry[T any] struct {
	mu      sync.Mutex
	items   map[string]*item[T]
	factory func(userID string) T
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry builds a registry whose values idle longer than ttl are evicted.
// A non-positive ttl disables eviction.
func NewRegistry[T any](ttl time.Duration, factory func(userID string) T) *Registry[T] {
	return &Registry[T]{
		items:   make(map[string]*item[T]),
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value for userID, creating it on first access.
func (registry *Registry[T]) Get(userID string) T {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	entry, found := registry.items[userID]
	if !found {
		entry = &item[T]{value: registry.factory(userID)}
		registry.items[userID] = entry
	}
	entry.lastSeen = registry.now()

	return entry.value
}

// Len returns the number of live values.
func (registry *Registry[T]) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.items)
}

// Evict removes every value idle for longer than the ttl and returns how many were removed.
func (registry *Registry[T]) Evict() int {
	if registry.ttl <= 0 {
		return 0
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	evicted := 0
	cutoff := registry.now().Add(-registry.ttl)
	for userID, entry := range registry.items {
		if entry.lastSeen.Before(cutoff) {
			delete(registry.items, userID)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle values every interval until ctx is cancelled.
func (registry *Registry[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			registry.Evict()
		case <-ctx.Done():
			return
		}
	}
}

// SetClock replaces the time source. Intended for tests.
func (registry *Registry[T]) SetClock(now func() time.Time) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.now = now
}
