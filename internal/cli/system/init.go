package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing database before initialization."`
	Source string `help:"Database path or connection string to copy habits and settings from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Ctx()); err != nil {
		return err
	}
	ctx.Printf("Initialized pocket storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Importing data from: %s\n", c.Source)
		if err := c.importFrom(ctx, c.Source); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		ctx.Println("Import completed successfully!")
	}

	return ctx.Wire(ctx.Ctx())
}

// reset deletes a SQLite database file so Init starts from scratch.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if !storage.IsSQLite(ctx.Store) {
		return fmt.Errorf("--force is only supported for SQLite storage")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// importFrom copies settings and the configured user's habits, ids and
// completions included, from another store.
func (c *InitCmd) importFrom(ctx *cli.Context, source string) error {
	src, err := storage.New(source)
	if err != nil {
		return err
	}
	if err := src.Load(ctx.Ctx()); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	ctx.Println("  Importing settings...")
	settings, err := src.GetSettings(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	if err := ctx.Store.SaveSettings(ctx.Ctx(), settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	userID := settings.UserID
	if ctx.UserID != "" {
		userID = ctx.UserID
	}
	ctx.Println("  Importing habits...")
	habits, err := src.ListHabits(ctx.Ctx(), userID)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	for _, h := range habits {
		if _, err := ctx.Store.CreateHabit(ctx.Ctx(), h); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
		}
	}
	ctx.Printf("    Imported %d habits\n", len(habits))
	return nil
}
