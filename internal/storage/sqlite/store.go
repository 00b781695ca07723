package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/migration"
	"github.com/kaizenhq/kaizen/internal/storage/sqldb"
	"github.com/kaizenhq/kaizen/migrations"
)

// Store is the single-user, file-backed storage.Provider.
type Store struct {
	*sqldb.Queries

	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// dsn enables foreign keys and a busy timeout on every pooled connection.
func (s *Store) dsn() string {
	return "file:" + s.path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	s.Queries = sqldb.New(db, sqldb.SQLite)
	return nil
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return s.EnsureDefaultSettings()
}

// connect opens an existing database without looking at its schema.
func (s *Store) connect() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}
	return s.open()
}

// Load opens the database and requires its schema to be current.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.connect(); err != nil {
		return err
	}

	st, err := s.SchemaStatus()
	if err != nil {
		s.Close()
		return err
	}
	if !st.UpToDate() {
		s.Close()
		return fmt.Errorf("database schema is at version %d, %d is required; run '%s migrate'",
			st.Current, st.Latest, constants.AppName)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	if err := s.connect(); err != nil {
		return nil, err
	}
	fsys, err := migrations.For("sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, fsys), nil
}

func (s *Store) Migrate() ([]migration.Migration, error) {
	r, err := s.runner()
	if err != nil {
		return nil, err
	}
	return r.Apply()
}

func (s *Store) SchemaStatus() (migration.Status, error) {
	r, err := s.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return r.Status()
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, or nil before Init or
// Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
