package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/pocket/internal/constants"
	pocketerrors "github.com/julianstephens/pocket/internal/errors"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage/sqlutil"
)

const habitColumns = "id, user_id, name, cue, identity, created_at, completions, streak"

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string
	var completions []byte

	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Cue, &h.Identity, &createdAt, &completions, &h.Streak); err != nil {
		return models.Habit{}, err
	}

	t, err := time.Parse(constants.TimestampFormat, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.CreatedAt = t
	h.Completions = sqlutil.DecodeCompletions(h.ID, completions)
	return h, nil
}

// CreateHabit stores h and returns its id. An empty id is assigned here.
func (s *Store) CreateHabit(ctx context.Context, h models.Habit) (string, error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	doc, err := sqlutil.EncodeCompletions(h.Completions)
	if err != nil {
		return "", pocketerrors.Storage("create habit", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, h.Cue, h.Identity,
		h.CreatedAt.UTC().Format(constants.TimestampFormat), doc, h.Streak)
	if err != nil {
		return "", pocketerrors.Storage("create habit", err)
	}
	return h.ID, nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+habitColumns+" FROM habits WHERE id = ?", id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, pocketerrors.NotFound("get habit", id)
	}
	if err != nil {
		return models.Habit{}, pocketerrors.Storage("get habit", err)
	}
	return h, nil
}

// ListHabits returns userID's habits, newest first. An empty userID lists all.
func (s *Store) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits"
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pocketerrors.Storage("list habits", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, pocketerrors.Storage("list habits", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, pocketerrors.Storage("list habits", err)
	}
	return habits, nil
}

// UpdateHabit applies p in a single statement, so completions and streak
// change together.
func (s *Store) UpdateHabit(ctx context.Context, id string, p models.HabitPatch) error {
	set, args, err := sqlutil.PatchSet(p, sqlutil.QuestionBind)
	if err != nil {
		return pocketerrors.Storage("update habit", err)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE habits SET "+set+" WHERE id = ?", args...)
	if err != nil {
		return pocketerrors.Storage("update habit", err)
	}
	return sqlutil.RequireAffected(res, "update habit", id)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return pocketerrors.Storage("delete habit", err)
	}
	return sqlutil.RequireAffected(res, "delete habit", id)
}
