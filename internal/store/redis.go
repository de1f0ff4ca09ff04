package store

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	// Redis server address (host:port).
	Address string
	// Password required when connecting to the Redis server.
	Password string
	// DB to connect to.
	DB int
	// PoolSize caps the connection pool, 0 for the client default.
	PoolSize int
	// TLS config, nil for plaintext.
	TLSConfig *tls.Config
}

// DefaultRedisOptions returns options for a local unauthenticated server.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Address: "localhost:6379",
	}
}

// RedisStore implements Store on a Redis server. Records are hashes at
// rag:{namespace}:{id}; the index is a set at rag:{namespace}:index.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed store.
func NewRedis(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:      opts.Address,
		Password:  opts.Password,
		DB:        opts.DB,
		PoolSize:  opts.PoolSize,
		TLSConfig: opts.TLSConfig,
	})
	return &RedisStore{client: client}
}

// Apply submits the whole batch through one transactional pipeline, so a
// concurrent reader sees either none or all of its writes.
func (s *RedisStore) Apply(ctx context.Context, batch Batch) error {
	if len(batch.Writes) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, w := range batch.Writes {
		fields := make(map[string]any, len(w.Fields))
		for k, v := range w.Fields {
			fields[k] = v
		}
		pipe.HSet(ctx, itemKey(w.Namespace, w.ID), fields)
		pipe.SAdd(ctx, indexKey(w.Namespace), w.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis exec: %w", err)
	}
	return nil
}

func (s *RedisStore) GetItem(ctx context.Context, namespace, id string) (map[string][]byte, error) {
	data, err := s.client.HGetAll(ctx, itemKey(namespace, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	fields := make(map[string][]byte, len(data))
	for k, v := range data {
		fields[k] = []byte(v)
	}
	return fields, nil
}

func (s *RedisStore) ListIDs(ctx context.Context, namespace string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, indexKey(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
