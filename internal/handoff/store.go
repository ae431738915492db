// Package handoff carries a normalized batch from the extraction stage to
// the load stage. The batch lives in redis under a run-scoped token with a
// bounded TTL: a load-stage failure can be retried in a fresh process
// without re-extracting, but a token that expires before load completion
// forces re-extraction. This is not a long-term store.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/meta-ads-loader/internal/domain"
)

// ErrNotFound is returned when a token no longer resolves to a batch,
// either because it expired or because it never existed.
var ErrNotFound = errors.New("handoff: token not found or expired")

const keyPrefix = "metaads:handoff:"

// Store persists load batches between pipeline stages.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a handoff store. The TTL bounds every token's lifetime.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Persist stores the batch under the run's token and returns the token.
// The token is simply the run ID; only the owning run can resolve it.
func (s *Store) Persist(ctx context.Context, batch *domain.LoadBatch, runID string) (string, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return "", fmt.Errorf("handoff: encoding batch: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+runID, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("handoff: persisting batch for run %s: %w", runID, err)
	}
	return runID, nil
}

// Retrieve resolves a token back to its batch.
func (s *Store) Retrieve(ctx context.Context, token string) (*domain.LoadBatch, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("handoff: retrieving batch for token %s: %w", token, err)
	}

	var batch domain.LoadBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("handoff: decoding batch for token %s: %w", token, err)
	}
	return &batch, nil
}

// Delete releases a token once its run has completed.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("handoff: deleting token %s: %w", token, err)
	}
	return nil
}
