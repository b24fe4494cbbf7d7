package drivers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vigilhq/mongoose/internal/session"
)

const (
	sessionKeyPrefix = "mongoose:session:"
	defaultTTL       = 24 * time.Hour
)

// RedisStore implements session.Repository on Redis with optimistic locking
// via WATCH/MULTI/EXEC. Use it when turns for one conversation can land on
// more than one process.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Create implements session.Repository.
func (s *RedisStore) Create(ctx context.Context, agg *session.Aggregate) error {
	now := time.Now()
	agg.CreatedAt = now
	agg.UpdatedAt = now
	agg.Version = 1

	val, err := json.Marshal(agg)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, s.key(agg.ID), val, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrExists
	}
	return nil
}

// Get implements session.Repository. Missing sessions return (nil, nil).
// The TTL is refreshed on every read so an active conversation never
// expires mid-flight.
func (s *RedisStore) Get(ctx context.Context, id string) (*session.Aggregate, error) {
	key := s.key(id)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var agg session.Aggregate
	if err := json.Unmarshal([]byte(val), &agg); err != nil {
		return nil, err
	}
	_ = s.client.Expire(ctx, key, s.ttl).Err()
	return &agg, nil
}

// Update implements session.Repository with optimistic locking.
func (s *RedisStore) Update(ctx context.Context, agg *session.Aggregate) error {
	key := s.key(agg.ID)

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return session.ErrNotFound
		}
		if err != nil {
			return err
		}

		var stored session.Aggregate
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return err
		}
		if stored.Version != agg.Version {
			return session.ErrVersionConflict
		}

		agg.Version++
		agg.UpdatedAt = time.Now()
		newVal, err := json.Marshal(agg)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		})
		return err
	}, key)
}

// Delete implements session.Repository.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// List implements session.Repository by scanning the key prefix.
func (s *RedisStore) List(ctx context.Context) ([]*session.Aggregate, error) {
	var out []*session.Aggregate
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		val, err := s.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var agg session.Aggregate
		if err := json.Unmarshal([]byte(val), &agg); err != nil {
			return nil, err
		}
		out = append(out, &agg)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close implements session.Repository.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return sessionKeyPrefix + id
}
