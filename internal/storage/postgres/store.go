package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/migration"
	"github.com/kaizenhq/kaizen/internal/storage/sqldb"
	"github.com/kaizenhq/kaizen/migrations"
)

// Store is the shared, multi-user storage.Provider. All tables live in
// their own schema, named after the application.
type Store struct {
	*sqldb.Queries

	connStr string
	db      *sql.DB
}

func New(connStr string) *Store {
	return &Store{connStr: withSearchPath(connStr, constants.AppName)}
}

func (s *Store) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasParam(s.connStr, "sslmode") {
			return fmt.Errorf("failed to connect to database: %w (hint: add sslmode=disable to the connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	s.Queries = sqldb.New(db, sqldb.Postgres)
	return nil
}

func (s *Store) Init() error {
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

// Load connects and requires the schema to be current.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.open(); err != nil {
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
	if s.db == nil {
		if err := s.open(); err != nil {
			return nil, err
		}
	}
	fsys, err := migrations.For("postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, fsys), nil
}

// Migrate creates the application schema if needed and applies pending
// migrations inside it.
func (s *Store) Migrate() ([]migration.Migration, error) {
	r, err := s.runner()
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
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

// GetConfigPath returns a non-sensitive identifier instead of the
// connection string.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}
