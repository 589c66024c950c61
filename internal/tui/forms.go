package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pocket/internal/tracker"
)

// NewHabitForm is the three-step creation wizard: what, when, who.
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What habit do you want to build?").
				Description("Step 1 of 3. Keep it small: \"read one page\".").
				Value(&fm.Name).
				Validate(func(s string) error {
					_, err := tracker.Draft{Name: s}.Validate()
					return err
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("When and where will you do it?").
				Description("Step 2 of 3. The cue, e.g. \"after my morning coffee\". Optional.").
				Value(&fm.Cue).
				Validate(func(s string) error {
					_, err := tracker.Draft{Name: "cue", Cue: s}.Validate()
					return err
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Who do you want to become?").
				Description("Step 3 of 3. The identity, e.g. \"a reader\". Optional.").
				Value(&fm.Identity).
				Validate(func(s string) error {
					_, err := tracker.Draft{Name: "identity", Identity: s}.Validate()
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewDeleteForm asks for explicit confirmation before a habit is removed.
func NewDeleteForm(name string, fm *ConfirmationFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", name)).
				Description("Its whole completion history goes with it. This cannot be undone.").
				Affirmative("Delete").
				Negative("Keep").
				Value(&fm.Confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}
