// Package sqldb holds the queries shared by the SQLite and PostgreSQL
// stores. Statements are written with ? placeholders and rewritten for
// PostgreSQL on the way out.
package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kaizenhq/kaizen/internal/storage"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Queries implements the data methods of storage.Provider on top of an
// open *sql.DB. The stores embed it and add their own lifecycle.
type Queries struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func New(db *sql.DB, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect, now: time.Now}
}

// Rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func Rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (q *Queries) exec(query string, args ...interface{}) (sql.Result, error) {
	return q.db.Exec(Rebind(q.dialect, query), args...)
}

func (q *Queries) query(query string, args ...interface{}) (*sql.Rows, error) {
	return q.db.Query(Rebind(q.dialect, query), args...)
}

func (q *Queries) queryRow(query string, args ...interface{}) *sql.Row {
	return q.db.QueryRow(Rebind(q.dialect, query), args...)
}

// execOne runs an update that must touch exactly one row and turns zero
// rows into storage.ErrNotFound.
func (q *Queries) execOne(what, query string, args ...interface{}) error {
	result, err := q.exec(query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}

func (q *Queries) timestamp() string {
	return formatTime(q.now())
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), storage.ErrNotFound)
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func parseNullTime(field string, value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseTime(field, value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
