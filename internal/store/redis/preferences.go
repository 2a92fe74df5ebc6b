package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/navspec/internal/store"
)

// Store keeps the preference document as a single Redis string.
type Store struct {
	client redis.UniversalClient
	key    string
}

// NewStore creates a new Redis preferences store
func NewStore(client redis.UniversalClient, key string) *Store {
	return &Store{
		client: client,
		key:    PreferencesKey(key),
	}
}

func (s *Store) Name() string { return "redis" }

// Key is the Redis key in use.
func (s *Store) Key() string { return s.key }

// Load retrieves the preference document
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return data, nil
}

// Save stores the preference document without expiry
func (s *Store) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
