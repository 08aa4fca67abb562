package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB es *sql.DB más el dialecto (los placeholders cambian entre pg y sqlite).
type DB struct {
	*sql.DB
	Dialect Dialect
}

// ParseURL: "postgres://..." o "postgresql://..." -> pgx; "sqlite:<path>" -> modernc.
func ParseURL(url string) (driver, dsn string, d Dialect, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, Postgres, nil
	case strings.HasPrefix(url, "sqlite:"):
		path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite:"), "//")
		if path == "" {
			return "", "", "", fmt.Errorf("sqlite url without path: %q", url)
		}
		return "sqlite", path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", SQLite, nil
	}
	return "", "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", url)
}

// Open abre la conexión y verifica health.
func Open(ctx context.Context, url string) (*DB, error) {
	driver, dsn, dialect, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		// un solo writer; evita SQLITE_BUSY entre conexiones
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(1 * time.Hour)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return &DB{DB: db, Dialect: dialect}, nil
}

// Migrate aplica las migraciones embebidas del dialecto.
func Migrate(db *DB) error {
	goose.SetBaseFS(migrations)
	dialect, dir := "postgres", "migrations/postgres"
	if db.Dialect == SQLite {
		dialect, dir = "sqlite3", "migrations/sqlite"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.Up(db.DB, dir)
}

var rePlaceholder = regexp.MustCompile(`\$(\d+)`)

// q adapta una query escrita con $N al dialecto (sqlite usa ?N).
func (db *DB) q(query string) string {
	if db.Dialect == SQLite {
		return rePlaceholder.ReplaceAllString(query, "?$1")
	}
	return query
}

// mapErr traduce violaciones de unique a ErrDuplicate.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) && sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%w: %s", ErrDuplicate, sqErr.Error())
	}
	return err
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
