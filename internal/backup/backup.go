// Package backup snapshots the SQLite database into <configDir>/backups
// and restores from those snapshots.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/logger"
)

const stampLayout = "20060102-150405"

var (
	ErrNoDatabase    = errors.New("database does not exist")
	ErrInvalidBackup = errors.New("not a valid kaizen backup")
)

// Info describes one backup file.
type Info struct {
	Name      string
	Path      string
	Timestamp time.Time
	Size      int64
}

type Manager struct {
	dbPath    string
	backupDir string
	keep      int
	now       func() time.Time
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.backupDir
}

// Create snapshots the database and prunes the oldest backups beyond the
// retention limit.
func (m *Manager) Create() (Info, error) {
	info, err := m.snapshot()
	if err != nil {
		return Info{}, err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("failed to rotate old backups", "error", err)
	}
	return info, nil
}

func (m *Manager) snapshot() (Info, error) {
	if _, err := os.Stat(m.dbPath); errors.Is(err, os.ErrNotExist) {
		return Info{}, fmt.Errorf("%w: %s", ErrNoDatabase, m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return Info{}, err
	}

	db, err := sql.Open("sqlite", "file:"+m.dbPath+"?mode=ro")
	if err != nil {
		return Info{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("VACUUM INTO ?", path); err != nil {
		return Info{}, fmt.Errorf("failed to back up database: %w", err)
	}

	logger.Info("backup created", "path", path)
	return m.stat(filepath.Base(path))
}

// nextPath picks an unused file name for the current second, adding a
// counter when several backups are taken within it.
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().Format(stampLayout)
	for n := 0; n < 100; n++ {
		name := constants.BackupFilePrefix + stamp
		if n > 0 {
			name += "-" + strconv.Itoa(n)
		}
		path := filepath.Join(m.backupDir, name+constants.BackupFileSuffix)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to find a free backup name for %s", stamp)
}

// parseName extracts the timestamp of a backup file name, or reports false
// for files that are not backups.
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	if len(stamp) > len(stampLayout) {
		counter := stamp[len(stampLayout):]
		if counter[0] != '-' {
			return time.Time{}, false
		}
		if _, err := strconv.Atoi(counter[1:]); err != nil {
			return time.Time{}, false
		}
		stamp = stamp[:len(stampLayout)]
	}
	ts, err := time.ParseInLocation(stampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (m *Manager) stat(name string) (Info, error) {
	ts, ok := parseName(name)
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrInvalidBackup, name)
	}
	path := filepath.Join(m.backupDir, name)
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: name, Path: path, Timestamp: ts, Size: fi.Size()}, nil
}

// List returns the backups newest first. A missing backup directory yields
// an empty list.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := m.stat(e.Name())
		if err != nil {
			continue
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		// same second: higher counter first
		if len(backups[i].Name) != len(backups[j].Name) {
			return len(backups[i].Name) > len(backups[j].Name)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for _, b := range backups[min(m.keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", b.Name, err)
		}
		logger.Debug("removed old backup", "path", b.Path)
	}
	return nil
}

// Resolve turns a backup name (with or without directory) into its Info.
func (m *Manager) Resolve(name string) (Info, error) {
	name = filepath.Base(name)
	if !strings.HasSuffix(name, constants.BackupFileSuffix) {
		name += constants.BackupFileSuffix
	}
	info, err := m.stat(name)
	if errors.Is(err, os.ErrNotExist) {
		return Info{}, fmt.Errorf("backup %q not found in %s", name, m.backupDir)
	}
	return info, err
}

// Restore replaces the database with the given backup. The current database,
// if any, is snapshotted first and that snapshot is returned so the caller
// can report it. The store must be closed while restoring.
func (m *Manager) Restore(backup Info) (*Info, error) {
	if err := verify(backup.Path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	var previous *Info
	if _, err := os.Stat(m.dbPath); err == nil {
		snap, err := m.snapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
		previous = &snap
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(backup.Path, tmp); err != nil {
		os.Remove(tmp)
		return previous, fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		os.Remove(tmp)
		return previous, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("database restored", "from", backup.Path)
	return previous, nil
}

// verify checks that path is a SQLite database carrying the kaizen schema.
func verify(path string) error {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('habits', 'completions')`).Scan(&n)
	if err != nil {
		return err
	}
	if n != 2 {
		return errors.New("habits or completions table missing")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
