package storage

import (
	"context"
	"sync"

	"github.com/julianstephens/pocket/internal/logger"
	"github.com/julianstephens/pocket/internal/models"
)

// Listener receives a user's full habit collection, newest first.
type Listener func(habits []models.Habit)

type subscription struct {
	userID string
	fn     Listener
}

// Feed wraps a Repository and pushes a fresh snapshot to subscribers after
// every successful write. Deliveries happen on the writer's goroutine, in
// write order; listeners must not call back into the Feed's write methods.
type Feed struct {
	repo Repository

	// pubMu serializes write-then-publish so snapshots arrive in write order.
	pubMu sync.Mutex

	mu     sync.Mutex
	nextID int
	subs   map[int]subscription
}

// NewFeed returns a Feed over repo.
func NewFeed(repo Repository) *Feed {
	return &Feed{
		repo: repo,
		subs: make(map[int]subscription),
	}
}

// Subscribe registers fn for userID's collection and delivers the current
// snapshot before returning. The returned cancel func is idempotent.
func (f *Feed) Subscribe(ctx context.Context, userID string, fn Listener) (func(), error) {
	f.pubMu.Lock()
	defer f.pubMu.Unlock()

	habits, err := f.repo.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = subscription{userID: userID, fn: fn}
	f.mu.Unlock()

	fn(habits)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}, nil
}

// Subscribers returns the number of active subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// publish re-lists each subscribed user once and fans the snapshot out.
// Caller holds pubMu.
func (f *Feed) publish(ctx context.Context) {
	f.mu.Lock()
	byUser := make(map[string][]Listener)
	for _, s := range f.subs {
		byUser[s.userID] = append(byUser[s.userID], s.fn)
	}
	f.mu.Unlock()

	for userID, fns := range byUser {
		habits, err := f.repo.ListHabits(ctx, userID)
		if err != nil {
			logger.Warn("Failed to refresh habit snapshot", "user", userID, "error", err)
			continue
		}
		for _, fn := range fns {
			fn(habits)
		}
	}
}

// Refresh pushes a new snapshot without a write, e.g. after settings change.
func (f *Feed) Refresh(ctx context.Context) {
	f.pubMu.Lock()
	defer f.pubMu.Unlock()
	f.publish(ctx)
}

func (f *Feed) CreateHabit(ctx context.Context, h models.Habit) (string, error) {
	f.pubMu.Lock()
	defer f.pubMu.Unlock()

	id, err := f.repo.CreateHabit(ctx, h)
	if err != nil {
		return "", err
	}
	f.publish(ctx)
	return id, nil
}

func (f *Feed) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	return f.repo.GetHabit(ctx, id)
}

func (f *Feed) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	return f.repo.ListHabits(ctx, userID)
}

func (f *Feed) UpdateHabit(ctx context.Context, id string, p models.HabitPatch) error {
	f.pubMu.Lock()
	defer f.pubMu.Unlock()

	if err := f.repo.UpdateHabit(ctx, id, p); err != nil {
		return err
	}
	f.publish(ctx)
	return nil
}

func (f *Feed) DeleteHabit(ctx context.Context, id string) error {
	f.pubMu.Lock()
	defer f.pubMu.Unlock()

	if err := f.repo.DeleteHabit(ctx, id); err != nil {
		return err
	}
	f.publish(ctx)
	return nil
}
