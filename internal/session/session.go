// Package session owns one cart per browsing session.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/brewhouse/internal/domain"
)

// Record is the stored form of a session's cart.
type Record struct {
	ID        string            `json:"id"`
	Items     []domain.LineItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Repository persists session records for at most their TTL. Get returns an
// apperrors NotFound error for unknown or expired sessions.
type Repository interface {
	Get(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id NewID could have issued.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
