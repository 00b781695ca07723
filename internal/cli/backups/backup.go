package backups

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaizenhq/kaizen/internal/backup"
	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/constants"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a backup of the SQLite database."`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the database from a backup."`
}

func manager(ctx *cli.Context) (*backup.Manager, error) {
	path, ok := ctx.SQLitePath()
	if !ok {
		return nil, kerrors.Usagef("backups are only supported for SQLite databases; use pg_dump for PostgreSQL")
	}
	return backup.NewManager(path), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	info, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Backup created: %s\n", info.Name)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		fmt.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	fmt.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		fmt.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Name, sizeKB)
	}
	fmt.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or name of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`

	in io.Reader
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	target, err := c.locate(mgr)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Println("⚠️  WARNING: This will replace your current database with the backup.")
		fmt.Println("⚠️  IMPORTANT: All kaizen processes (including the TUI) must be stopped before restore.")
		fmt.Println("A backup of your current database will be created before restoring.")
		fmt.Printf("\nRestore from: %s\n", target.Path)
		fmt.Print("Continue? [y/N]: ")

		ok, err := confirm(c.input())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}

	previous, err := mgr.Restore(target)
	if previous != nil {
		fmt.Printf("Previous database saved as: %s\n", previous.Name)
	}
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Println("✓ Database restored successfully!")
	return nil
}

// locate accepts an absolute path, a path relative to the working directory
// or the name of a file in the backup directory.
func (c *BackupRestoreCmd) locate(mgr *backup.Manager) (backup.Info, error) {
	path := c.BackupFile
	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return mgr.Resolve(path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return backup.Info{}, fmt.Errorf("failed to resolve backup path: %w", err)
		}
		path = abs
	}

	st, err := os.Stat(path)
	if err != nil {
		return backup.Info{}, fmt.Errorf("backup file not found: %s", path)
	}
	return backup.Info{Name: filepath.Base(path), Path: path, Timestamp: st.ModTime(), Size: st.Size()}, nil
}

func (c *BackupRestoreCmd) input() io.Reader {
	if c.in != nil {
		return c.in
	}
	return os.Stdin
}

func confirm(r io.Reader) (bool, error) {
	response, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
