package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pocketerrors "github.com/julianstephens/pocket/internal/errors"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage/sqlite"
)

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "feed.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })
	return NewFeed(store)
}

func names(habits []models.Habit) []string {
	out := make([]string, len(habits))
	for i, h := range habits {
		out[i] = h.Name
	}
	return out
}

func TestFeed_SubscribeDeliversInitialSnapshot(t *testing.T) {
	ctx := context.Background()
	feed := newTestFeed(t)

	_, err := feed.CreateHabit(ctx, models.Habit{UserID: "local", Name: "Read"})
	require.NoError(t, err)

	var got [][]string
	cancel, err := feed.Subscribe(ctx, "local", func(h []models.Habit) { got = append(got, names(h)) })
	require.NoError(t, err)
	defer cancel()

	require.Len(t, got, 1)
	assert.Equal(t, []string{"Read"}, got[0])
	assert.Equal(t, 1, feed.Subscribers())
}

func TestFeed_PushesOnEveryWrite(t *testing.T) {
	ctx := context.Background()
	feed := newTestFeed(t)

	var snapshots [][]models.Habit
	cancel, err := feed.Subscribe(ctx, "local", func(h []models.Habit) { snapshots = append(snapshots, h) })
	require.NoError(t, err)

	id, err := feed.CreateHabit(ctx, models.Habit{UserID: "local", Name: "Run"})
	require.NoError(t, err)

	c := models.Completions{"2024-01-01": true}
	streak := 1
	require.NoError(t, feed.UpdateHabit(ctx, id, models.HabitPatch{Completions: &c, Streak: &streak}))
	require.NoError(t, feed.DeleteHabit(ctx, id))

	require.Len(t, snapshots, 4)
	assert.Empty(t, snapshots[0])
	assert.Equal(t, 0, snapshots[1][0].Streak)
	assert.Equal(t, 1, snapshots[2][0].Streak)
	assert.True(t, snapshots[2][0].CompletedOn("2024-01-01"))
	assert.Empty(t, snapshots[3])

	cancel()
	cancel()
	_, err = feed.CreateHabit(ctx, models.Habit{UserID: "local", Name: "Swim"})
	require.NoError(t, err)
	assert.Len(t, snapshots, 4, "cancelled listener must not receive pushes")
	assert.Equal(t, 0, feed.Subscribers())
}

func TestFeed_ScopesByUser(t *testing.T) {
	ctx := context.Background()
	feed := newTestFeed(t)

	var mine, theirs []string
	c1, err := feed.Subscribe(ctx, "me", func(h []models.Habit) { mine = names(h) })
	require.NoError(t, err)
	defer c1()
	c2, err := feed.Subscribe(ctx, "you", func(h []models.Habit) { theirs = names(h) })
	require.NoError(t, err)
	defer c2()

	_, err = feed.CreateHabit(ctx, models.Habit{UserID: "me", Name: "Journal"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Journal"}, mine)
	assert.Empty(t, theirs)
}

func TestFeed_FailedWriteDoesNotPublish(t *testing.T) {
	ctx := context.Background()
	feed := newTestFeed(t)

	calls := 0
	cancel, err := feed.Subscribe(ctx, "local", func([]models.Habit) { calls++ })
	require.NoError(t, err)
	defer cancel()

	err = feed.DeleteHabit(ctx, "missing")
	require.Error(t, err)
	assert.True(t, pocketerrors.IsNotFound(err))
	assert.Equal(t, 1, calls)
}

type brokenRepo struct{ Repository }

func (brokenRepo) ListHabits(context.Context, string) ([]models.Habit, error) {
	return nil, pocketerrors.Storage("list habits", errors.New("connection reset"))
}

func TestFeed_SubscribeSurfacesStorageError(t *testing.T) {
	feed := NewFeed(brokenRepo{})
	cancel, err := feed.Subscribe(context.Background(), "local", func([]models.Habit) {
		t.Fatal("listener must not be called")
	})
	assert.Nil(t, cancel)
	assert.True(t, pocketerrors.IsStorage(err))
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	feed := newTestFeed(t)

	read, err := feed.CreateHabit(ctx, models.Habit{ID: "abc123", UserID: "local", Name: "Read"})
	require.NoError(t, err)
	_, err = feed.CreateHabit(ctx, models.Habit{ID: "abd456", UserID: "local", Name: "Run"})
	require.NoError(t, err)

	h, err := Resolve(ctx, feed, "local", "abc")
	require.NoError(t, err)
	assert.Equal(t, read, h.ID)

	h, err = Resolve(ctx, feed, "local", "run")
	require.NoError(t, err)
	assert.Equal(t, "Run", h.Name)

	_, err = Resolve(ctx, feed, "local", "ab")
	assert.ErrorContains(t, err, "matches 2 habits")

	_, err = Resolve(ctx, feed, "local", "zzz")
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := New(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.True(t, IsSQLite(p))

	p, err = New("postgres://me@localhost/pocket")
	require.NoError(t, err)
	assert.False(t, IsSQLite(p))
	assert.Equal(t, "postgresql", p.GetConfigPath())

	p, err = New("host=localhost dbname=pocket user=me")
	require.NoError(t, err)
	assert.False(t, IsSQLite(p))

	_, err = New("postgres://me:pw@localhost/pocket")
	assert.Error(t, err)
}
