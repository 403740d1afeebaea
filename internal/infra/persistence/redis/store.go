// Package redis provides a Redis-backed persistent store. The in-memory
// state is snapshotted into a single hash, one field per collection bucket.
package redis

import (
	"context"
	"fmt"
	"sync"

	"rentledger/internal/infra/persistence/memory"
	"rentledger/pkg/domain"

	"github.com/go-redis/redis/v8"
)

var _ domain.PersistentStore = (*Store)(nil)

// DefaultPrefix namespaces the snapshot key when none is configured.
const DefaultPrefix = "rentledger"

// Store persists state to Redis while reusing the in-memory implementation for transactions.
type Store struct {
	*memory.Store
	client *redis.Client
	key    string
	mu     sync.Mutex
}

// NewStore hydrates a store from the snapshot hash at "<prefix>:state".
func NewStore(ctx context.Context, client *redis.Client, prefix string, engine *domain.RulesEngine) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s := &Store{Store: memory.NewStore(engine), client: client, key: prefix + ":state"}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the hash key holding the snapshot.
func (s *Store) Key() string { return s.key }

func (s *Store) load(ctx context.Context) error {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	var snapshot memory.Snapshot
	for bucket, payload := range fields {
		if err := snapshot.DecodeBucket(bucket, []byte(payload)); err != nil {
			return err
		}
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	encoded, err := s.ExportState().EncodeBuckets()
	if err != nil {
		return err
	}
	values := make(map[string]any, len(encoded))
	for bucket, payload := range encoded {
		values[bucket] = payload
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// RunInTransaction applies fn within a transaction, then snapshots to Redis if successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if err := s.persist(ctx); err != nil {
		return res, fmt.Errorf("persist snapshot: %w", err)
	}
	return res, nil
}

// Close releases the client.
func (s *Store) Close() error { return s.client.Close() }
