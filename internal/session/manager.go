package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/brewhouse/internal/cart"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

// Manager loads a session's cart, hands it to a callback and writes it back.
// Calls for the same session id are serialised, so each cart sees one
// ordered stream of mutations even under concurrent requests.
type Manager struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager creates a manager over repo.
func NewManager(repo Repository, logger *slog.Logger) *Manager {
	return &Manager{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		locks:  make(map[string]*sessionLock),
	}
}

func (m *Manager) acquire(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

func (m *Manager) load(ctx context.Context, id string) (*Record, error) {
	rec, err := m.repo.Get(ctx, id)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		now := m.now()
		return &Record{ID: id, CreatedAt: now, UpdatedAt: now}, nil
	}
	return nil, fmt.Errorf("load session %s: %w", id, err)
}

// With installs the cart of session id in the context passed to fn, where
// cart.FromContext retrieves it, and saves the cart when fn returns. An
// unknown or expired session starts with an empty cart. If fn returns an
// error the cart is not saved.
func (m *Manager) With(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	release := m.acquire(id)
	defer release()

	rec, err := m.load(ctx, id)
	if err != nil {
		return err
	}

	store := cart.Restore(rec.Items)
	if err := fn(cart.WithStore(ctx, store)); err != nil {
		return err
	}

	rec.Items = store.Items()
	rec.UpdatedAt = m.now()
	if err := m.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}

	m.logger.DebugContext(ctx, "session cart saved",
		slog.String("session_id", id),
		slog.Int("lines", len(rec.Items)),
	)
	return nil
}

// Snapshot reads the cart of session id without modifying it.
func (m *Manager) Snapshot(ctx context.Context, id string) (cart.Snapshot, error) {
	release := m.acquire(id)
	defer release()

	rec, err := m.load(ctx, id)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return cart.Restore(rec.Items).Snapshot(), nil
}

// End forgets session id and its cart. The next call for id starts empty.
func (m *Manager) End(ctx context.Context, id string) error {
	release := m.acquire(id)
	defer release()

	if err := m.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
