package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage/postgres"
	"github.com/julianstephens/pocket/internal/storage/sqlite"
)

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
)

// ExpandPath resolves a leading "~" against the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// New picks a provider for target: a postgres:// URL or a key=value DSN
// selects PostgreSQL, anything else is a SQLite file path.
func New(target string) (Provider, error) {
	if postgres.IsConnString(target) || postgres.IsDSN(target) {
		if ok, err := postgres.ValidateConnString(target); !ok {
			return nil, err
		}
		return postgres.New(target), nil
	}
	path, err := ExpandPath(target)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// IsSQLite reports whether p keeps its data in a local file.
func IsSQLite(p Provider) bool {
	_, ok := p.(*sqlite.Store)
	return ok
}

// Resolve finds the single habit of userID referenced by ref: an exact id, a
// unique id prefix, or a case-insensitive name.
func Resolve(ctx context.Context, repo Repository, userID, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, fmt.Errorf("no habit given")
	}

	habits, err := repo.ListHabits(ctx, userID)
	if err != nil {
		return models.Habit{}, err
	}

	var matches []models.Habit
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
		if strings.HasPrefix(h.ID, ref) || strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}

	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("no habit matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%q matches %d habits, use a longer id", ref, len(matches))
	}
}
