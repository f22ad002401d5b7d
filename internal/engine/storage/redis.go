package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rendis/aqimap/internal/model"
)

const redisKeyPrefix = "aqimap:boundaries:"

// RedisStore shares the payload cache between hosts through redis.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

type redisEntry struct {
	Provider  string `json:"provider"`
	Payload   []byte `json:"payload"`
	FetchedAt int64  `json:"fetched_at"`
}

func NewRedisStore(addr string, db int, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func redisKey(kind model.Kind) string {
	return redisKeyPrefix + string(kind)
}

func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	b, err := json.Marshal(redisEntry{Provider: e.Provider, Payload: e.Payload, FetchedAt: e.FetchedAt.UnixMilli()})
	if err != nil {
		return fmt.Errorf("encoding payload for %s: %w", e.Kind, err)
	}
	if err := s.rdb.Set(ctx, redisKey(e.Kind), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing payload for %s: %w", e.Kind, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, kind model.Kind) (Entry, error) {
	b, err := s.rdb.Get(ctx, redisKey(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading payload for %s: %w", kind, err)
	}
	var re redisEntry
	if err := json.Unmarshal(b, &re); err != nil {
		return Entry{}, fmt.Errorf("decoding payload for %s: %w", kind, err)
	}
	return Entry{
		Kind:      kind,
		Provider:  re.Provider,
		Payload:   re.Payload,
		FetchedAt: time.UnixMilli(re.FetchedAt),
	}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
