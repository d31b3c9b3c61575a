// Package trigger reads the externally maintained trigger-state document
// describing the progress of the next mint event. The document is owned by
// the mint scheduler process; this backend only takes read-only snapshots.
package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// State is a snapshot of the trigger-state document.
type State struct {
	NextNFTID               uint64 `json:"next_nft_id"`
	LastMintTimestampMillis int64  `json:"last_mint_timestamp"`
	LastMintBlock           uint64 `json:"last_mint_block"`
}

// Store reads the single trigger-state document from redis.
type Store struct {
	client *redis.Client
	key    string
}

// NewStore creates a store over the given redis address. key is the fixed
// identifier of the trigger-state document.
func NewStore(addr, password, key string) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		key: key,
	}
}

// NewStoreWithClient wires an existing redis client; used by tests.
func NewStoreWithClient(client *redis.Client, key string) *Store {
	return &Store{client: client, key: key}
}

// Get returns the current trigger state, or (nil, nil) when the document
// does not exist yet.
func (s *Store) Get(ctx context.Context) (*State, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("trigger: read failed: %w", err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("trigger: malformed document: %w", err)
	}
	return &state, nil
}

// Ping is the lightweight store liveness probe used by the connection
// monitor.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
