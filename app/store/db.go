package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	_ "github.com/jackc/pgx/v5/stdlib" // postgresql driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/umputun/shade/app/enum"
)

// dbType identifies the backing database engine.
type dbType int

const (
	dbTypeSQLite dbType = iota
	dbTypePostgres
)

// DB implements preference storage using SQLite or PostgreSQL.
type DB struct {
	db     *sqlx.DB
	dbType dbType
	mu     RWLocker
}

// NewDB creates a new DB store with the given database URL.
// Automatically detects database type from URL:
// - postgres:// or postgresql:// -> PostgreSQL
// - everything else -> SQLite file path
func NewDB(dbURL string) (*DB, error) {
	dbt := detectDBType(dbURL)

	var db *sqlx.DB
	var err error
	var locker RWLocker

	switch dbt {
	case dbTypePostgres:
		db, err = connectPostgres(dbURL)
		locker = noopLocker{}
	default:
		db, err = connectSQLite(dbURL)
		locker = &sync.RWMutex{}
	}

	if err != nil {
		return nil, err
	}

	s := &DB{db: db, dbType: dbt, mu: locker}

	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Printf("[DEBUG] initialized %s preference store", s.dbTypeName())
	return s, nil
}

// detectDBType determines database type from URL.
func detectDBType(url string) dbType {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return dbTypePostgres
	}
	return dbTypeSQLite
}

// connectSQLite establishes SQLite connection with pragmas.
func connectSQLite(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	// set pragmas for performance and reliability
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil { //nolint:noctx // init-time, no context available
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	// limit connections for SQLite (single writer)
	db.SetMaxOpenConns(1)

	return db, nil
}

// connectPostgres establishes PostgreSQL connection.
func connectPostgres(dbURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// createSchema creates the preferences table if it doesn't exist.
func (s *DB) createSchema() error {
	var schema string
	switch s.dbType {
	case dbTypePostgres:
		schema = `
			CREATE TABLE IF NOT EXISTS preferences (
				visitor TEXT PRIMARY KEY,
				theme TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT NOW(),
				updated_at TIMESTAMP DEFAULT NOW()
			)`
	default:
		schema = `
			CREATE TABLE IF NOT EXISTS preferences (
				visitor TEXT PRIMARY KEY,
				theme TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`
	}
	if _, err := s.db.Exec(schema); err != nil { //nolint:noctx // init-time, no context available
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// dbTypeName returns human-readable database type name.
func (s *DB) dbTypeName() string {
	if s.dbType == dbTypePostgres {
		return "postgres"
	}
	return "sqlite"
}

// Get retrieves the stored theme for the given visitor.
// Returns ErrNotFound when nothing is stored; a stored value that fails
// validation is logged and reported as ErrNotFound so callers fall
// through to the platform signal instead of applying garbage.
func (s *DB) Get(ctx context.Context, visitor string) (enum.Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	query := s.adoptQuery("SELECT theme FROM preferences WHERE visitor = ?")
	err := s.db.GetContext(ctx, &value, query, visitor)
	if errors.Is(err, sql.ErrNoRows) {
		return enum.ThemeLight, ErrNotFound
	}
	if err != nil {
		return enum.ThemeLight, fmt.Errorf("failed to get preference for %q: %w", visitor, err)
	}

	theme, err := enum.ParseTheme(value)
	if err != nil {
		log.Printf("[WARN] invalid stored theme for %s: %v, treating as absent", visitor, err)
		return enum.ThemeLight, ErrNotFound
	}
	return theme, nil
}

// Set stores the theme for the given visitor, overwriting any prior value.
func (s *DB) Set(ctx context.Context, visitor string, theme enum.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := s.adoptQuery(`
		INSERT INTO preferences (visitor, theme, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(visitor) DO UPDATE SET theme = excluded.theme, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, visitor, theme.String(), now, now); err != nil {
		return fmt.Errorf("failed to set preference for %q: %w", visitor, err)
	}
	return nil
}

// Close closes the database connection.
func (s *DB) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// adoptQuery converts SQLite query syntax to PostgreSQL:
// - placeholders: ? → $1, $2, ...
// - case: excluded. → EXCLUDED.
func (s *DB) adoptQuery(query string) string {
	if s.dbType != dbTypePostgres {
		return query
	}

	query = strings.ReplaceAll(query, "excluded.", "EXCLUDED.")

	result := make([]byte, 0, len(query)+10)
	paramNum := 1
	for i := range len(query) {
		if query[i] != '?' {
			result = append(result, query[i])
			continue
		}
		result = append(result, '$')
		result = append(result, strconv.Itoa(paramNum)...)
		paramNum++
	}
	return string(result)
}
