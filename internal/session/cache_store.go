package session

import (
	"context"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
)

type cacheStore struct {
	cache cache.Cache
	key   string
	ttl   time.Duration
}

// NewCacheStore keeps the snapshot under storefront:session:<name>.
func NewCacheStore(c cache.Cache, name string, ttl time.Duration) Store {
	return &cacheStore{cache: c, key: cache.Key(cache.SessionKeyPrefix, name), ttl: ttl}
}

func (s *cacheStore) Load(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot

	found, err := s.cache.Get(ctx, s.key, &snap)
	if err != nil {
		return nil, appErrors.SessionStoreError("Failed to load session").WithError(err)
	}

	if !found {
		return nil, nil
	}

	return &snap, nil
}

func (s *cacheStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := s.cache.Set(ctx, s.key, snap, s.ttl); err != nil {
		return appErrors.SessionStoreError("Failed to save session").WithError(err)
	}

	return nil
}

func (s *cacheStore) Clear(ctx context.Context) error {
	if err := s.cache.Delete(ctx, s.key); err != nil {
		return appErrors.SessionStoreError("Failed to clear session").WithError(err)
	}

	return nil
}
