package models

import (
	"testing"
)

func TestHabitPatch_Validate(t *testing.T) {
	name := "Read"
	streak := 2
	negative := -1
	completions := Completions{"2024-01-01": true, "2024-01-02": true}

	tests := []struct {
		name    string
		patch   HabitPatch
		wantErr error
	}{
		{name: "empty", patch: HabitPatch{}, wantErr: ErrPatchEmpty},
		{name: "rename only", patch: HabitPatch{Name: &name}},
		{name: "completions with streak", patch: HabitPatch{Completions: &completions, Streak: &streak}},
		{name: "completions without streak", patch: HabitPatch{Completions: &completions}, wantErr: ErrPatchUnpairedStreak},
		{name: "streak without completions", patch: HabitPatch{Streak: &streak}, wantErr: ErrPatchUnpairedStreak},
		{name: "negative streak", patch: HabitPatch{Completions: &completions, Streak: &negative}, wantErr: ErrPatchNegativeStreak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHabitPatch_Apply(t *testing.T) {
	h := Habit{ID: "h1", Name: "Run", Completions: Completions{}}
	name := "Walk"
	streak := 1
	c := Completions{"2024-01-01": true}

	got := HabitPatch{Name: &name, Completions: &c, Streak: &streak}.Apply(h)
	if got.Name != "Walk" || got.Streak != 1 || !got.CompletedOn("2024-01-01") {
		t.Errorf("Apply() = %+v", got)
	}
	if h.Name != "Run" || h.Completions.Count() != 0 {
		t.Errorf("Apply() mutated original habit: %+v", h)
	}

	c["2024-01-02"] = true
	if got.CompletedOn("2024-01-02") {
		t.Error("Apply() shares the patch's completions map")
	}
}

func TestMapToSettings(t *testing.T) {
	s, err := MapToSettings(map[string]string{
		"timezone":            "Europe/Berlin",
		"streak_mode":         "consecutive",
		"ratio_window_days":   "14",
		"heatmap_window_days": "35",
		"user_id":             "me",
	})
	if err != nil {
		t.Fatalf("MapToSettings failed: %v", err)
	}
	if s.Timezone != "Europe/Berlin" || s.StreakMode != StreakConsecutive ||
		s.RatioWindowDays != 14 || s.HeatmapWindowDays != 35 || s.UserID != "me" {
		t.Errorf("unexpected settings: %+v", s)
	}

	if _, err := MapToSettings(map[string]string{"ratio_window_days": "abc"}); err == nil {
		t.Error("expected error for non-numeric window")
	}

	round, err := MapToSettings(SettingsToMap(s))
	if err != nil || round != s {
		t.Errorf("SettingsToMap round trip = %+v, %v", round, err)
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	s := Settings{StreakMode: "weekly"}
	ApplyDefaultSettings(&s)
	want := Settings{
		Timezone:          "Local",
		StreakMode:        StreakTotal,
		RatioWindowDays:   7,
		HeatmapWindowDays: 28,
		UserID:            "local",
	}
	if s != want {
		t.Errorf("ApplyDefaultSettings() = %+v, want %+v", s, want)
	}
}
