// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package querycache is the keyed store that feeds every dashboard listing.

Each entry is identified by a [Key] tuple such as {"postulations", "42", "3,7"}.
Families of related entries share a prefix ({"initiatives"} covers the owner
lists and every admin page), and all bulk operations (cancel, snapshot,
optimistic update, restore, invalidate) address such a family through
prefix matching instead of a single key.

The cache is shared by every user of the process, so keys carry the user id
right after the family name ({"postulations", userID, ...}) and a mutation
only cancels fetches of its own user's family.

Concurrency:

  - A single mutex guards the entries. Snapshot, optimistic edits, restore and
    invalidation run entirely under it, so a fetch completion can never observe
    (or overwrite) a half-applied edit.
  - Fetches run outside the lock. Each one is registered on its entry with a
    cancel func and the entry's generation at start; [Cache.Cancel] aborts them
    and bumps the generation so a late response is dropped ([ErrAborted]).
  - Every write of an entry's data bumps its revision. A fetch whose entry was
    written after the fetch started hands its data to its caller but does not
    store it, and [Cache.Restore] only rolls back entries nothing has written
    since the optimistic edit.
  - Invalidation only marks entries stale. A fetch that started before the
    invalidation still returns its data to its caller, but the entry stays stale
    so the next read fetches again.
  - Entries unused for longer than the idle limit are evicted by [Cache.Run].
*/
package querycache

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrAborted reports that a fetch was cancelled and produced no result.
//
// It is not a failure: callers must treat it as "no data" and never surface it
// to the user as an error.
var ErrAborted = errors.New("querycache: fetch aborted")

// # Keys

// Key identifies one cached query.
type Key []string

// NewKey builds a key from its parts.
func NewKey(parts ...string) Key {
	return Key(parts)
}

// HasPrefix reports whether every element of prefix matches the start of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, part := range prefix {
		if k[i] != part {
			return false
		}
	}
	return true
}

// String renders the key for logs.
func (k Key) String() string {
	return "[" + strings.Join(k, " ") + "]"
}

// id is the map identity of a key. The unit separator cannot occur in ids or user input.
func (k Key) id() string {
	return strings.Join(k, "\x1f")
}

// # Entries

// Fetcher loads the data of one entry. It must honour ctx cancellation.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	key     Key
	data    any
	hasData bool
	stale   bool

	// generation is bumped by Cancel; results of older fetches are dropped.
	generation uint64
	// epoch is bumped by Invalidate; results of older fetches are kept but stay stale.
	epoch uint64
	// revision is bumped on every data write; results of older fetches are not stored.
	revision uint64
	lastUsed time.Time
	inflight map[uint64]context.CancelFunc
}

// Cache is a process-wide keyed query store. The zero value is not usable; call [New].
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	fetchID uint64
	logger  *slog.Logger
	now     func() time.Time
}

// New constructs an empty [Cache].
func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]*entry),
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the clock used for idle eviction.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// entryLocked returns the entry for key, creating it on first use.
func (c *Cache) entryLocked(key Key) *entry {
	id := key.id()
	e, found := c.entries[id]
	if !found {
		e = &entry{
			key:      append(Key(nil), key...),
			inflight: make(map[uint64]context.CancelFunc),
		}
		c.entries[id] = e
	}
	e.lastUsed = c.now()
	return e
}

// dropIfEmptyLocked forgets an entry that never held data and has no fetch left.
func (c *Cache) dropIfEmptyLocked(e *entry) {
	id := e.key.id()
	if !e.hasData && len(e.inflight) == 0 && c.entries[id] == e {
		delete(c.entries, id)
	}
}

// storeLocked writes fresh data into e.
func storeLocked(e *entry, data any) {
	e.data = data
	e.hasData = true
	e.revision++
}

// matchLocked returns every entry under any of prefixes, ordered by key for
// deterministic iteration.
func (c *Cache) matchLocked(prefixes ...Key) []*entry {
	var matched []*entry
	for _, e := range c.entries {
		for _, prefix := range prefixes {
			if e.key.HasPrefix(prefix) {
				matched = append(matched, e)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].key.id() < matched[j].key.id()
	})
	return matched
}

// # Reads

/*
Query returns the cached data for key, fetching it when absent or stale.

Parameters:
  - ctx: cancelling it aborts the fetch (navigation away)
  - key: Key
  - fetch: Fetcher

Returns:
  - any: the entry data
  - error: the fetch error, or ErrAborted if the fetch was cancelled
*/
func (c *Cache) Query(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if e.hasData && !e.stale {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}

	c.fetchID++
	fetchID := c.fetchID
	generation, epoch, revision := e.generation, e.epoch, e.revision
	fetchCtx, cancel := context.WithCancel(ctx)
	e.inflight[fetchID] = cancel
	c.mu.Unlock()

	data, err := fetch(fetchCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(e.inflight, fetchID)
	cancel()
	e.lastUsed = c.now()

	if e.generation != generation {
		c.logger.Debug("query_result_dropped", slog.String("key", key.String()))
		c.dropIfEmptyLocked(e)
		return nil, ErrAborted
	}

	if err != nil {
		c.dropIfEmptyLocked(e)
		if ctx.Err() != nil {
			return nil, ErrAborted
		}
		return nil, err
	}

	// Written since this fetch started: the entry already holds newer data.
	if e.revision != revision {
		return data, nil
	}

	storeLocked(e, data)
	e.stale = e.epoch != epoch

	return data, nil
}

// Peek returns the current data for key without fetching.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key.id()]
	if !found || !e.hasData {
		return nil, false
	}
	return e.data, true
}

// IsStale reports whether key must be re-fetched on its next read.
// Unknown keys are stale.
func (c *Cache) IsStale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key.id()]
	if !found || !e.hasData {
		return true
	}
	return e.stale
}

// # Writes

// Set stores fresh data for key.
func (c *Cache) Set(key Key, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	storeLocked(e, data)
	e.stale = false
}

// Len returns the number of entries, including those still being fetched.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cancel aborts every in-flight fetch under prefix and returns how many were aborted.
func (c *Cache) Cancel(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelLocked(prefix)
}

func (c *Cache) cancelLocked(prefix Key) int {
	aborted := 0
	for _, e := range c.matchLocked(prefix) {
		e.generation++
		for id, cancel := range e.inflight {
			cancel()
			delete(e.inflight, id)
			aborted++
		}
	}
	return aborted
}

// Invalidate marks every entry under prefix stale and returns how many matched.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	matched := c.matchLocked(prefix)
	for _, e := range matched {
		e.stale = true
		e.epoch++
	}
	return len(matched)
}

// # Snapshots

// Snapshot is the verbatim state of a family of entries right before an
// optimistic edit.
type Snapshot struct {
	entries []snapshotEntry
}

type snapshotEntry struct {
	key     Key
	data    any
	hasData bool
	stale   bool
	// revision is the entry's revision right after the edit.
	revision uint64
}

// Len returns the number of captured entries.
func (s Snapshot) Len() int { return len(s.entries) }

/*
BeginOptimistic performs the synchronous half of an optimistic mutation in a
single critical section:

 1. cancel in-flight fetches under own, the acting user's family,
 2. snapshot every entry under own and shared,
 3. apply the optimistic edit to every captured entry holding data.

Fetches under shared belong to other users and are not cancelled; whatever
they return is handed to their callers but not stored over the edit.

The returned snapshot is what [Cache.Restore] needs to roll the edit back.
apply must return a new value rather than modify its argument in place, or the
snapshot would be modified too.
*/
func (c *Cache) BeginOptimistic(apply func(data any) any, own Key, shared ...Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if aborted := c.cancelLocked(own); aborted > 0 {
		c.logger.Debug("query_fetches_cancelled",
			slog.String("prefix", own.String()),
			slog.Int("count", aborted),
		)
	}

	var snapshot Snapshot
	for _, e := range c.matchLocked(append([]Key{own}, shared...)...) {
		captured := snapshotEntry{key: e.key, data: e.data, hasData: e.hasData, stale: e.stale}
		if e.hasData {
			storeLocked(e, apply(e.data))
		}
		captured.revision = e.revision
		snapshot.entries = append(snapshot.entries, captured)
	}
	return snapshot
}

// Restore puts every captured entry back exactly as it was, unless the entry
// was written or evicted since the edit: newer data is kept.
func (c *Cache) Restore(snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, captured := range snapshot.entries {
		e, found := c.entries[captured.key.id()]
		if !found || e.revision != captured.revision {
			continue
		}
		e.data = captured.data
		e.hasData = captured.hasData
		e.stale = captured.stale
		e.revision++
	}
}

// # Eviction

// Evict forgets every entry unused for longer than maxIdle, except those with a
// fetch in flight, and returns how many were removed.
func (c *Cache) Evict(maxIdle time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for id, e := range c.entries {
		if len(e.inflight) == 0 && now.Sub(e.lastUsed) > maxIdle {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle entries every interval until ctx is cancelled.
func (c *Cache) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := c.Evict(maxIdle); evicted > 0 {
				c.logger.Debug("query_entries_evicted", slog.Int("count", evicted))
			}
		case <-ctx.Done():
			return
		}
	}
}
