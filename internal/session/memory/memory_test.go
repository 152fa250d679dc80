package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/brewhouse/internal/domain"
	"github.com/utafrali/brewhouse/internal/session"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRepo(ttl time.Duration) (*Repository, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	repo := NewRepository(ttl)
	repo.now = clock.now
	return repo, clock
}

func TestGet_Missing(t *testing.T) {
	repo, _ := newTestRepo(time.Hour)
	_, err := repo.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSaveGet_Copies(t *testing.T) {
	repo, _ := newTestRepo(time.Hour)
	ctx := context.Background()
	rec := &session.Record{
		ID:    "s1",
		Items: []domain.LineItem{{Product: domain.Product{ID: "c1"}, Quantity: 1}},
	}
	require.NoError(t, repo.Save(ctx, rec))

	rec.Items[0].Quantity = 99

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)

	got.Items[0].Quantity = 42
	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestExpiry(t *testing.T) {
	repo, clock := newTestRepo(time.Minute)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &session.Record{ID: "s1"}))

	clock.advance(59 * time.Second)
	_, err := repo.Get(ctx, "s1")
	require.NoError(t, err)

	clock.advance(time.Second)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSave_SlidesExpiry(t *testing.T) {
	repo, clock := newTestRepo(time.Minute)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &session.Record{ID: "s1"}))

	clock.advance(50 * time.Second)
	require.NoError(t, repo.Save(ctx, &session.Record{ID: "s1"}))
	clock.advance(50 * time.Second)

	_, err := repo.Get(ctx, "s1")
	assert.NoError(t, err)
}

func TestSweep(t *testing.T) {
	repo, clock := newTestRepo(time.Minute)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &session.Record{ID: "old"}))
	clock.advance(2 * time.Minute)
	require.NoError(t, repo.Save(ctx, &session.Record{ID: "new"}))

	assert.Equal(t, 2, repo.Len())
	assert.Equal(t, 1, repo.Sweep())
	assert.Equal(t, 1, repo.Len())

	_, err := repo.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	repo, _ := newTestRepo(time.Hour)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &session.Record{ID: "s1"}))
	require.NoError(t, repo.Delete(ctx, "s1"))
	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.Equal(t, 0, repo.Len())
}
