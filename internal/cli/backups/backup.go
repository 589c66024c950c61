package backups

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/pocket/internal/backup"
	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/storage"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	Push    BackupPushCmd    `cmd:"" help:"Upload a backup to S3-compatible storage."`
}

func manager(ctx *cli.Context) (*backup.Manager, error) {
	if !storage.IsSQLite(ctx.Store) {
		return nil, fmt.Errorf("backups are only supported for SQLite storage; use pg_dump for PostgreSQL")
	}
	return backup.NewManager(ctx.Store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backupPath, err := mgr.CreateBackup(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct {
	Remote bool `help:"List backups in the configured S3 bucket instead."`
}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	if c.Remote {
		remote, err := backup.NewRemote(ctx.Ctx(), backup.RemoteConfigFromEnv())
		if err != nil {
			return err
		}
		objects, err := remote.List(ctx.Ctx())
		if err != nil {
			return err
		}
		if len(objects) == 0 {
			ctx.Println("No remote backups found.")
			return nil
		}
		for _, o := range objects {
			ctx.Printf("  %s  %s  (%.1f KB)\n", o.LastModified.Local().Format("2006-01-02 15:04:05"), o.Key, float64(o.Size)/1024.0)
		}
		return nil
	}

	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Name(), float64(b.Size)/1024.0)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	backupPath := c.BackupFile
	if _, err := os.Stat(backupPath); err == nil {
		if backupPath, err = filepath.Abs(backupPath); err != nil {
			return fmt.Errorf("failed to resolve backup path: %w", err)
		}
	} else if backupPath, err = mgr.Find(c.BackupFile); err != nil {
		return fmt.Errorf("backup file not found: tried current directory and %s", mgr.GetBackupDir())
	}

	if !c.Yes {
		ctx.Println("⚠️  WARNING: This will replace your current database with the backup.")
		ctx.Println("⚠️  IMPORTANT: Stop every other pocket process (TUI, serve) before restoring.")
		ctx.Println("A backup of your current database will be created before restoring.")
		ctx.Printf("\nRestore from: %s\n", backupPath)
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}

	saved, err := mgr.RestoreBackup(ctx.Ctx(), backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.Println("✓ Database restored successfully!")
	if saved != "" {
		ctx.Printf("  Previous database saved as %s\n", filepath.Base(saved))
	}
	return nil
}

type BackupPushCmd struct {
	BackupFile string `arg:"" optional:"" help:"Backup to upload. Creates a fresh backup when omitted."`
	Bucket     string `help:"Bucket name." env:"POCKET_BACKUP_S3_BUCKET"`
	Endpoint   string `help:"Custom endpoint, e.g. http://localhost:9000 for MinIO." env:"POCKET_BACKUP_S3_ENDPOINT"`
}

func (c *BackupPushCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	path := c.BackupFile
	if path == "" {
		if path, err = mgr.CreateBackup(ctx.Ctx()); err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
	} else if _, statErr := os.Stat(path); statErr != nil {
		if path, err = mgr.Find(c.BackupFile); err != nil {
			return err
		}
	}

	cfg := backup.RemoteConfigFromEnv()
	if c.Bucket != "" {
		cfg.Bucket = c.Bucket
	}
	if c.Endpoint != "" {
		cfg.Endpoint = c.Endpoint
	}
	remote, err := backup.NewRemote(ctx.Ctx(), cfg)
	if err != nil {
		return err
	}
	key, err := remote.Push(ctx.Ctx(), path)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Uploaded %s to s3://%s/%s\n", filepath.Base(path), cfg.Bucket, key)
	return nil
}
