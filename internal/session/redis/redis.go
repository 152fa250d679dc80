// Package redis stores session carts in Redis with a sliding TTL.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/brewhouse/internal/session"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

const keyPrefix = "session:cart:"

// Repository implements session.Repository using Redis.
type Repository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRepository creates a Redis-backed session repository.
func NewRepository(client *redis.Client, ttl time.Duration) *Repository {
	return &Repository{
		client: client,
		ttl:    ttl,
	}
}

func key(id string) string {
	return keyPrefix + id
}

// Get fetches the session record, or NotFound when the key has expired.
func (r *Repository) Get(ctx context.Context, id string) (*session.Record, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("session", id)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &rec, nil
}

// Save writes the record and resets its TTL.
func (r *Repository) Save(ctx context.Context, rec *session.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, key(rec.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
