// Package tracker is the mutation boundary for habits: it validates input,
// keeps each habit's streak consistent with its completions and orders
// concurrent toggles of the same habit.
package tracker

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/pocket/internal/analytics"
	"github.com/julianstephens/pocket/internal/constants"
	pocketerrors "github.com/julianstephens/pocket/internal/errors"
	"github.com/julianstephens/pocket/internal/logger"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage"
)

// Tracker performs habit mutations against a Repository.
type Tracker struct {
	repo   storage.Repository
	userID string
	now    func() time.Time

	modeMu sync.RWMutex
	mode   models.StreakMode

	locks keyedMutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithStreakMode selects how streaks are computed on toggle.
func WithStreakMode(mode models.StreakMode) Option {
	return func(t *Tracker) { t.mode = mode }
}

// New returns a Tracker writing habits owned by userID.
func New(repo storage.Repository, userID string, opts ...Option) *Tracker {
	t := &Tracker{
		repo:   repo,
		userID: userID,
		mode:   models.StreakTotal,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// UserID returns the owner of habits written by t.
func (t *Tracker) UserID() string { return t.userID }

// Mode returns the active streak mode.
func (t *Tracker) Mode() models.StreakMode {
	t.modeMu.RLock()
	defer t.modeMu.RUnlock()
	return t.mode
}

// Draft is the user-supplied part of a new habit.
type Draft struct {
	Name     string
	Cue      string
	Identity string
}

func validateText(field, value string, max int, required bool) (string, error) {
	value = strings.TrimSpace(value)
	if required && value == "" {
		return "", pocketerrors.Validation(field, "must not be empty")
	}
	if utf8.RuneCountInString(value) > max {
		return "", pocketerrors.Validation(field, "is too long")
	}
	return value, nil
}

// Validate trims d and checks its fields.
func (d Draft) Validate() (Draft, error) {
	var err error
	if d.Name, err = validateText("name", d.Name, constants.MaxNameLength, true); err != nil {
		return Draft{}, err
	}
	if d.Cue, err = validateText("cue", d.Cue, constants.MaxCueLength, false); err != nil {
		return Draft{}, err
	}
	if d.Identity, err = validateText("identity", d.Identity, constants.MaxIdentityLength, false); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Create validates d and stores a new habit with no completions. Invalid input
// returns a ValidationError without touching the repository.
func (t *Tracker) Create(ctx context.Context, d Draft) (models.Habit, error) {
	d, err := d.Validate()
	if err != nil {
		return models.Habit{}, err
	}

	h := models.Habit{
		UserID:      t.userID,
		Name:        d.Name,
		Cue:         d.Cue,
		Identity:    d.Identity,
		CreatedAt:   t.now().UTC(),
		Completions: models.Completions{},
		Streak:      0,
	}
	id, err := t.repo.CreateHabit(ctx, h)
	if err != nil {
		return models.Habit{}, err
	}
	h.ID = id
	logger.Debug("Habit created", "id", id, "name", h.Name)
	return h, nil
}

// Toggle flips day for habit id and writes completions and the recomputed
// streak in one update. Toggles of the same habit run in call order.
func (t *Tracker) Toggle(ctx context.Context, id, day string) (models.Habit, error) {
	if !models.ValidDay(day) {
		return models.Habit{}, pocketerrors.Validation("date", "must be YYYY-MM-DD")
	}

	unlock := t.locks.Lock(id)
	defer unlock()

	h, err := t.repo.GetHabit(ctx, id)
	if err != nil {
		return models.Habit{}, err
	}

	next := h.Completions.Toggle(day)
	streak := analytics.ComputeStreak(next, t.now(), t.Mode())
	if err := t.repo.UpdateHabit(ctx, id, models.HabitPatch{Completions: &next, Streak: &streak}); err != nil {
		return models.Habit{}, err
	}

	h.Completions = next
	h.Streak = streak
	logger.Debug("Habit toggled", "id", id, "day", day, "done", next.Has(day), "streak", streak)
	return h, nil
}

// ToggleToday toggles the current local day.
func (t *Tracker) ToggleToday(ctx context.Context, id string) (models.Habit, error) {
	return t.Toggle(ctx, id, analytics.DayKey(t.now()))
}

// Update edits the descriptive fields of a habit. Nil fields are kept.
func (t *Tracker) Update(ctx context.Context, id string, name, cue, identity *string) error {
	var p models.HabitPatch
	if name != nil {
		v, err := validateText("name", *name, constants.MaxNameLength, true)
		if err != nil {
			return err
		}
		p.Name = &v
	}
	if cue != nil {
		v, err := validateText("cue", *cue, constants.MaxCueLength, false)
		if err != nil {
			return err
		}
		p.Cue = &v
	}
	if identity != nil {
		v, err := validateText("identity", *identity, constants.MaxIdentityLength, false)
		if err != nil {
			return err
		}
		p.Identity = &v
	}
	if p.Name == nil && p.Cue == nil && p.Identity == nil {
		return pocketerrors.Validation("", "nothing to update")
	}
	return t.repo.UpdateHabit(ctx, id, p)
}

// Delete removes habit id permanently. Without confirmation it returns
// ErrConfirmationRequired and the repository is not called.
func (t *Tracker) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return pocketerrors.ErrConfirmationRequired
	}
	unlock := t.locks.Lock(id)
	defer unlock()
	return t.repo.DeleteHabit(ctx, id)
}

// Recompute switches to mode and rewrites every cached streak that differs.
// It returns the number of habits updated.
func (t *Tracker) Recompute(ctx context.Context, mode models.StreakMode) (int, error) {
	t.modeMu.Lock()
	t.mode = mode
	t.modeMu.Unlock()

	habits, err := t.repo.ListHabits(ctx, t.userID)
	if err != nil {
		return 0, err
	}

	now := t.now()
	updated := 0
	for _, h := range habits {
		unlock := t.locks.Lock(h.ID)
		streak := analytics.ComputeStreak(h.Completions, now, mode)
		if streak != h.Streak {
			c := h.Completions.Clone()
			err = t.repo.UpdateHabit(ctx, h.ID, models.HabitPatch{Completions: &c, Streak: &streak})
		}
		unlock()
		if err != nil {
			return updated, err
		}
		if streak != h.Streak {
			updated++
		}
	}
	return updated, nil
}

// keyedMutex hands out one mutex per key. Entries are dropped once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
