package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Key      string
}

// RedisStore keeps the encoded set as a single string value.
type RedisStore struct {
	client redis.Cmdable
	closer func() error
	key    string
}

// NewRedisStore opens a client for opts.Addr.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	s := NewRedisStoreWithClient(client, opts.Prefix, opts.Key)
	s.closer = client.Close
	return s, nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.Cmdable, prefix, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{
		client: client,
		key:    prefix + key,
	}
}

// Key returns the redis key the set is stored under.
func (r *RedisStore) Key() string {
	return r.key
}

// Load reads the key. redis.Nil is an empty set.
func (r *RedisStore) Load(ctx context.Context) (models.ExplorationSet, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ExplorationSet{}, nil
		}
		return models.ExplorationSet{}, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return Decode(data)
}

// Save overwrites the key without expiry.
func (r *RedisStore) Save(ctx context.Context, set models.ExplorationSet) error {
	data, err := Encode(set)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Close closes the underlying client when the store opened it.
func (r *RedisStore) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
