// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package querycache_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/impulsa/internal/platform/querycache"
)

func constant(value any, calls *int32) querycache.Fetcher {
	return func(context.Context) (any, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

/*
TestKey_HasPrefix verifies element-wise prefix matching.
*/
func TestKey_HasPrefix(t *testing.T) {
	key := querycache.NewKey("initiatives", "admin", "page", "0", "12")

	assert.True(t, key.HasPrefix(querycache.NewKey("initiatives")))
	assert.True(t, key.HasPrefix(querycache.NewKey("initiatives", "admin")))
	assert.True(t, key.HasPrefix(querycache.NewKey()))
	assert.False(t, key.HasPrefix(querycache.NewKey("initiative")))
	assert.False(t, key.HasPrefix(querycache.NewKey("postulations")))
	assert.False(t, querycache.NewKey("initiatives").HasPrefix(key))
}

/*
TestQuery_CachesUntilInvalidated verifies read-through caching and stale re-fetch.
*/
func TestQuery_CachesUntilInvalidated(t *testing.T) {
	cache := querycache.New(nil)
	key := querycache.NewKey("initiatives", "mine", "7")
	var calls int32

	first, err := cache.Query(context.Background(), key, constant("a", &calls))
	require.NoError(t, err)
	second, err := cache.Query(context.Background(), key, constant("b", &calls))
	require.NoError(t, err)

	assert.Equal(t, "a", first)
	assert.Equal(t, "a", second)
	assert.EqualValues(t, 1, calls)

	// 1. Invalidation marks the family stale
	assert.Equal(t, 1, cache.Invalidate(querycache.NewKey("initiatives")))
	assert.True(t, cache.IsStale(key))

	// 2. Next read goes back to the source
	third, err := cache.Query(context.Background(), key, constant("c", &calls))
	require.NoError(t, err)
	assert.Equal(t, "c", third)
	assert.False(t, cache.IsStale(key))
	assert.EqualValues(t, 2, calls)
}

/*
TestQuery_ErrorKeepsPreviousData verifies that a failed fetch does not erase data.
*/
func TestQuery_ErrorKeepsPreviousData(t *testing.T) {
	cache := querycache.New(nil)
	key := querycache.NewKey("postulations", "7")
	cache.Set(key, "old")
	cache.Invalidate(key)

	boom := errors.New("boom")
	_, err := cache.Query(context.Background(), key, func(context.Context) (any, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	data, ok := cache.Peek(key)
	assert.True(t, ok)
	assert.Equal(t, "old", data)
	assert.True(t, cache.IsStale(key))
}

/*
TestCancel_DropsLateResult verifies that a response arriving after Cancel
cannot overwrite the entry.
*/
func TestCancel_DropsLateResult(t *testing.T) {
	cache := querycache.New(nil)
	key := querycache.NewKey("initiatives", "mine", "7")
	cache.Set(key, "optimistic")
	cache.Invalidate(key)

	started := make(chan struct{})
	release := make(chan struct{})
	result := make(chan error, 1)

	go func() {
		_, err := cache.Query(context.Background(), key, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			// the upstream ignores cancellation and still answers
			return "late", nil
		})
		result <- err
	}()

	<-started
	assert.Equal(t, 1, cache.Cancel(querycache.NewKey("initiatives")))
	close(release)

	assert.ErrorIs(t, <-result, querycache.ErrAborted)
	data, _ := cache.Peek(key)
	assert.Equal(t, "optimistic", data)
}

/*
TestQuery_CallerCancellationIsAbort verifies that navigation-away yields no result.
*/
func TestQuery_CallerCancellationIsAbort(t *testing.T) {
	cache := querycache.New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Query(ctx, querycache.NewKey("postulations"), func(ctx context.Context) (any, error) {
		return nil, ctx.Err()
	})

	assert.ErrorIs(t, err, querycache.ErrAborted)
}

/*
TestInvalidate_DuringFetchStaysStale verifies that data fetched across an
invalidation is returned but re-fetched on the next read.
*/
func TestInvalidate_DuringFetchStaysStale(t *testing.T) {
	cache := querycache.New(nil)
	key := querycache.NewKey("postulations", "7")

	data, err := cache.Query(context.Background(), key, func(context.Context) (any, error) {
		cache.Invalidate(querycache.NewKey("postulations"))
		return "fetched", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "fetched", data)
	assert.True(t, cache.IsStale(key))
}

/*
TestBeginOptimistic_RestoreIsExact verifies the snapshot/edit/restore cycle over
a whole key family.
*/
func TestBeginOptimistic_RestoreIsExact(t *testing.T) {
	cache := querycache.New(nil)
	mine := querycache.NewKey("initiatives", "mine", "7")
	page := querycache.NewKey("initiatives", "admin", "page", "0", "12")
	other := querycache.NewKey("postulations", "7")

	cache.Set(mine, []int{1, 2})
	cache.Set(page, []int{1, 2, 3})
	cache.Set(other, []int{1})

	removeOne := func(data any) any {
		var kept []int
		for _, v := range data.([]int) {
			if v != 1 {
				kept = append(kept, v)
			}
		}
		return kept
	}

	snapshot := cache.BeginOptimistic(removeOne, querycache.NewKey("initiatives"))
	assert.Equal(t, 2, snapshot.Len())

	got, _ := cache.Peek(mine)
	assert.Equal(t, []int{2}, got)
	got, _ = cache.Peek(page)
	assert.Equal(t, []int{2, 3}, got)
	got, _ = cache.Peek(other)
	assert.Equal(t, []int{1}, got, "entries outside the prefix are untouched")

	cache.Restore(snapshot)

	got, _ = cache.Peek(mine)
	assert.Equal(t, []int{1, 2}, got)
	got, _ = cache.Peek(page)
	assert.Equal(t, []int{1, 2, 3}, got)
}

/*
TestBeginOptimistic_SharedFamilyKeepsOtherFetches verifies that a fetch under a
shared family survives the edit: its caller gets the data, the entry keeps the edit.
*/
func TestBeginOptimistic_SharedFamilyKeepsOtherFetches(t *testing.T) {
	cache := querycache.New(nil)
	admin := querycache.NewKey("initiatives", "admin", "page", "0", "12")
	cache.Set(admin, []int{1, 2})
	cache.Invalidate(admin)

	started := make(chan struct{})
	release := make(chan struct{})
	type outcome struct {
		data any
		err  error
	}
	result := make(chan outcome, 1)

	go func() {
		data, err := cache.Query(context.Background(), admin, func(context.Context) (any, error) {
			close(started)
			<-release
			return []int{1, 2, 3}, nil
		})
		result <- outcome{data, err}
	}()

	<-started
	cache.BeginOptimistic(func(any) any { return []int{2} },
		querycache.NewKey("initiatives", "mine", "7"),
		querycache.NewKey("initiatives", "admin"),
	)
	close(release)

	got := <-result
	require.NoError(t, got.err)
	assert.Equal(t, []int{1, 2, 3}, got.data)

	data, _ := cache.Peek(admin)
	assert.Equal(t, []int{2}, data)
}

/*
TestRestore_KeepsNewerData verifies that a rollback never replaces data fetched
after the optimistic edit.
*/
func TestRestore_KeepsNewerData(t *testing.T) {
	cache := querycache.New(nil)
	mine := querycache.NewKey("postulations", "7", "1")
	other := querycache.NewKey("postulations", "8", "3")
	cache.Set(mine, []int{1, 2})
	cache.Set(other, []int{5})

	snapshot := cache.BeginOptimistic(func(any) any { return []int{} }, querycache.NewKey("postulations"))
	cache.Set(other, []int{5, 6})
	cache.Restore(snapshot)

	data, _ := cache.Peek(mine)
	assert.Equal(t, []int{1, 2}, data)
	data, _ = cache.Peek(other)
	assert.Equal(t, []int{5, 6}, data)
}

/*
TestEvict_IdleEntries verifies idle eviction and that in-flight entries are kept.
*/
func TestEvict_IdleEntries(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := querycache.New(nil)
	cache.SetClock(func() time.Time { return now })

	for page := range 50 {
		cache.Set(querycache.NewKey("initiatives", "admin", "page", strconv.Itoa(page), "12"), page)
	}
	recent := querycache.NewKey("postulations", "7")

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = cache.Query(context.Background(), querycache.NewKey("initiatives", "mine", "7"), func(context.Context) (any, error) {
			close(started)
			<-release
			return []int{1}, nil
		})
	}()
	<-started

	now = now.Add(20 * time.Minute)
	cache.Set(recent, []int{1})
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 50, cache.Evict(30*time.Minute))
	assert.Equal(t, 2, cache.Len())

	close(release)
	<-done
	_, ok := cache.Peek(recent)
	assert.True(t, ok)
}

/*
TestQuery_FailedFirstFetchLeavesNoEntry verifies that errors do not accumulate entries.
*/
func TestQuery_FailedFirstFetchLeavesNoEntry(t *testing.T) {
	cache := querycache.New(nil)

	for page := range 100 {
		key := querycache.NewKey("initiatives", "admin", "page", strconv.Itoa(page), "12")
		_, err := cache.Query(context.Background(), key, func(context.Context) (any, error) {
			return nil, errors.New("503")
		})
		require.Error(t, err)
	}

	assert.Zero(t, cache.Len())
}
