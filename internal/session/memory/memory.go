// Package memory keeps session carts in process memory.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/brewhouse/internal/domain"
	"github.com/utafrali/brewhouse/internal/session"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

type entry struct {
	rec       session.Record
	expiresAt time.Time
}

// Repository implements session.Repository with a map. Expired entries are
// invisible to Get and are reclaimed by Sweep.
type Repository struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewRepository creates an empty in-memory repository.
func NewRepository(ttl time.Duration) *Repository {
	return &Repository{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func copyRecord(rec session.Record) *session.Record {
	out := rec
	out.Items = make([]domain.LineItem, len(rec.Items))
	copy(out.Items, rec.Items)
	return &out
}

func (r *Repository) Get(_ context.Context, id string) (*session.Record, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok || !r.now().Before(e.expiresAt) {
		return nil, apperrors.NotFound("session", id)
	}
	return copyRecord(e.rec), nil
}

func (r *Repository) Save(_ context.Context, rec *session.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[rec.ID] = entry{
		rec:       *copyRecord(*rec),
		expiresAt: r.now().Add(r.ttl),
	}
	return nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (r *Repository) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if !now.Before(e.expiresAt) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// RunJanitor calls Sweep every interval until ctx is done.
func (r *Repository) RunJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.Debug("expired sessions swept", slog.Int("count", n))
			}
		}
	}
}
