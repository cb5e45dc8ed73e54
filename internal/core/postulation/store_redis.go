// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/impulsa/internal/platform/constants"
)

// # Redis Implementation

// RedisAppliedStore keeps applied flags as applied:{userID}:{initiativeID} keys.
type RedisAppliedStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAppliedStore constructs a [RedisAppliedStore]. A zero ttl keeps flags forever.
func NewRedisAppliedStore(client *redis.Client, ttl time.Duration) *RedisAppliedStore {
	return &RedisAppliedStore{client: client, ttl: ttl}
}

func appliedKey(userID string, initiativeID int64) string {
	return constants.RedisPrefixApplied + userID + ":" + strconv.FormatInt(initiativeID, 10)
}

func (store *RedisAppliedStore) IsApplied(ctx context.Context, userID string, initiativeID int64) (bool, error) {
	err := store.client.Get(ctx, appliedKey(userID, initiativeID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (store *RedisAppliedStore) MarkApplied(ctx context.Context, userID string, initiativeID int64) error {
	return store.client.Set(ctx, appliedKey(userID, initiativeID), "1", store.ttl).Err()
}

func (store *RedisAppliedStore) Clear(ctx context.Context, userID string, initiativeID int64) error {
	return store.client.Del(ctx, appliedKey(userID, initiativeID)).Err()
}
