// Package sqlutil holds the query helpers shared by the SQL-backed stores.
package sqlutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	pocketerrors "github.com/julianstephens/pocket/internal/errors"
	"github.com/julianstephens/pocket/internal/logger"
	"github.com/julianstephens/pocket/internal/models"
)

// Bind returns the placeholder for the n-th (1-based) argument.
type Bind func(n int) string

// QuestionBind is SQLite's positional placeholder.
func QuestionBind(int) string { return "?" }

// DollarBind is PostgreSQL's numbered placeholder.
func DollarBind(n int) string { return "$" + strconv.Itoa(n) }

// EncodeCompletions serializes completions as a JSON object of day -> true.
func EncodeCompletions(c models.Completions) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeCompletions parses a stored completions document. Malformed data is
// logged and read as an empty map so one bad row cannot break every view.
func DecodeCompletions(habitID string, raw []byte) models.Completions {
	if len(raw) == 0 {
		return models.Completions{}
	}
	var c models.Completions
	if err := json.Unmarshal(raw, &c); err != nil {
		logger.Warn("Ignoring unreadable completions",
			"error", &pocketerrors.ComputationError{What: "completions for habit " + habitID, Err: err})
		return models.Completions{}
	}
	if c == nil {
		return models.Completions{}
	}
	return c
}

// PatchSet renders the SET clause for p, numbering placeholders from 1.
// The returned args are in placeholder order; the caller appends the id.
func PatchSet(p models.HabitPatch, bind Bind) (string, []any, error) {
	if err := p.Validate(); err != nil {
		return "", nil, err
	}

	var cols []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		cols = append(cols, fmt.Sprintf("%s = %s", col, bind(len(args))))
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Cue != nil {
		add("cue", *p.Cue)
	}
	if p.Identity != nil {
		add("identity", *p.Identity)
	}
	if p.Completions != nil {
		doc, err := EncodeCompletions(*p.Completions)
		if err != nil {
			return "", nil, err
		}
		add("completions", doc)
		add("streak", *p.Streak)
	}
	return strings.Join(cols, ", "), args, nil
}

// LoadSettings reads the key/value settings table and applies defaults for
// anything missing.
func LoadSettings(ctx context.Context, db *sql.DB) (models.Settings, error) {
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

// SaveSettings upserts every settings key in one transaction.
func SaveSettings(ctx context.Context, db *sql.DB, settings models.Settings, bind Bind) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(
		"INSERT INTO settings (key, value) VALUES (%s, %s) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		bind(1), bind(2))

	data := models.SettingsToMap(settings)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, query, k, data[k]); err != nil {
			return fmt.Errorf("saving setting %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// RequireAffected turns a zero-row write into a not-found StorageError.
func RequireAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return pocketerrors.Storage(op, err)
	}
	if n == 0 {
		return pocketerrors.NotFound(op, id)
	}
	return nil
}
