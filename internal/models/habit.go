package models

import (
	"time"
)

// Habit is a trackable recurring behavior with its completion history.
// Streak is derived from Completions and is only ever written together with it.
type Habit struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Name        string      `json:"name"`
	Cue         string      `json:"cue,omitempty"`
	Identity    string      `json:"identity,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	Completions Completions `json:"completions"`
	Streak      int         `json:"streak"`
}

// CompletedOn reports whether the habit was completed on day.
func (h Habit) CompletedOn(day string) bool {
	return h.Completions.Has(day)
}

// HabitPatch is a partial update. Nil fields are left unchanged.
type HabitPatch struct {
	Name        *string
	Cue         *string
	Identity    *string
	Completions *Completions
	Streak      *int
}

// PatchError describes a malformed HabitPatch.
type PatchError string

func (e PatchError) Error() string { return string(e) }

const (
	ErrPatchEmpty          PatchError = "patch has no fields"
	ErrPatchUnpairedStreak PatchError = "completions and streak must be updated together"
	ErrPatchNegativeStreak PatchError = "streak must be non-negative"
)

// Validate enforces that completions and streak travel as a pair.
func (p HabitPatch) Validate() error {
	if p.Name == nil && p.Cue == nil && p.Identity == nil && p.Completions == nil && p.Streak == nil {
		return ErrPatchEmpty
	}
	if (p.Completions == nil) != (p.Streak == nil) {
		return ErrPatchUnpairedStreak
	}
	if p.Streak != nil && *p.Streak < 0 {
		return ErrPatchNegativeStreak
	}
	return nil
}

// Apply returns h with the patch applied. The patch is assumed valid.
func (p HabitPatch) Apply(h Habit) Habit {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Cue != nil {
		h.Cue = *p.Cue
	}
	if p.Identity != nil {
		h.Identity = *p.Identity
	}
	if p.Completions != nil {
		h.Completions = p.Completions.Clone()
	}
	if p.Streak != nil {
		h.Streak = *p.Streak
	}
	return h
}
