package storage

import (
	"context"

	"github.com/julianstephens/pocket/internal/models"
)

// Repository is durable per-user storage of habit records. Every failure is a
// *errors.StorageError; a missing habit additionally matches errors.ErrNotFound.
type Repository interface {
	CreateHabit(ctx context.Context, h models.Habit) (string, error)
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	// ListHabits returns userID's habits ordered by creation time, newest first.
	ListHabits(ctx context.Context, userID string) ([]models.Habit, error)
	// UpdateHabit applies a partial update. Completions and Streak must be set together.
	UpdateHabit(ctx context.Context, id string, p models.HabitPatch) error
	DeleteHabit(ctx context.Context, id string) error
}

type Provider interface {
	Repository

	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Schema
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	SchemaVersion(ctx context.Context) (current, latest int, err error)

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Utils
	GetConfigPath() string
}
