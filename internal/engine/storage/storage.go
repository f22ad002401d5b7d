package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rendis/aqimap/internal/model"
)

// ErrMiss is returned when no usable payload is cached for a kind.
var ErrMiss = errors.New("cache miss")

// Entry is the last good boundary payload retrieved for a kind.
type Entry struct {
	Kind      model.Kind
	Provider  string
	Payload   []byte
	FetchedAt time.Time
}

// Cache keeps the last payload that produced a non-empty validated layer,
// so a later run can fall back to it when every remote provider fails.
type Cache interface {
	Get(ctx context.Context, kind model.Kind) (Entry, error)
	Put(ctx context.Context, e Entry) error
	Close() error
}

// Open builds the cache for backend. "none" returns a nil Cache.
func Open(backend, path, redisAddr string, redisDB int, ttl time.Duration) (Cache, error) {
	switch backend {
	case "sqlite":
		s, err := NewStore(path, ttl)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := NewRedisStore(redisAddr, redisDB, ttl)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", backend)
}
