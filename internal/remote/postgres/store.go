// Package postgres mirrors the planner tables into a PostgreSQL schema
// through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/logger"
	"github.com/julianstephens/vitrine/internal/migration"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/remote"
	"github.com/julianstephens/vitrine/migrations"
)

func init() {
	remote.Register(func(ctx context.Context, cfg remote.Config) (remote.Adapter, error) {
		return Open(ctx, cfg)
	}, "postgres", "postgresql")
}

// Store is a remote.Adapter over a PostgreSQL database.
type Store struct {
	connStr string
	db      *sql.DB
	clients *table[models.Client]
	cards   *table[models.ContentCard]
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// Open validates cfg.URL, injects cfg.Key as the role password and connects.
func Open(ctx context.Context, cfg remote.Config) (*Store, error) {
	if _, err := ValidateConnString(cfg.URL); err != nil {
		return nil, err
	}

	s := New(cfg.URL, cfg.Key)
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// New prepares a Store without connecting.
func New(connStr, password string) *Store {
	s := &Store{
		connStr: connStr,
	}
	s.ensureSearchPath()
	s.injectPassword(password)
	s.clients = newClientsTable(s)
	s.cards = newCardsTable(s)
	return s
}

func (s *Store) ensureSearchPath() {
	u, err := url.Parse(s.connStr)
	if err != nil {
		logger.Warn("Failed to parse Postgres connection string", "error", err)
		return
	}
	q := u.Query()
	// Only set search_path if it's not already present
	if q.Get("search_path") == "" {
		q.Set("search_path", constants.AppName)
		u.RawQuery = q.Encode()
		s.connStr = u.String()
	}
}

func (s *Store) injectPassword(password string) {
	if password == "" {
		return
	}
	u, err := url.Parse(s.connStr)
	if err != nil || u.User == nil {
		logger.Warn("Postgres connection string has no user, key not applied")
		return
	}
	u.User = url.UserPassword(u.User.Username(), password)
	s.connStr = u.String()
}

// hasSSLMode checks if the connection URL carries an sslmode parameter (case-insensitive).
func hasSSLMode(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil || u.Scheme == "" {
		return false
	}
	for key := range u.Query() {
		if strings.EqualFold(key, "sslmode") {
			return true
		}
	}
	return false
}

// ValidateConnString checks that connStr is a postgres:// URL naming a user
// and carrying no password, since the password is the remote key.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if !strings.HasPrefix(connStr, "postgres://") && !strings.HasPrefix(connStr, "postgresql://") {
		return false, fmt.Errorf("%w: expected a postgres:// URL", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	parsedURL, err := url.Parse(connStr)
	if err != nil {
		return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
	}
	if _, isSet := parsedURL.User.Password(); isSet {
		return false, ErrEmbeddedCredentials
	}
	if parsedURL.User == nil || parsedURL.User.Username() == "" {
		return false, fmt.Errorf("%w: connection URL must name a user", ErrInvalidConnectionString)
	}
	if parsedURL.Host == "" {
		return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
	}

	return true, nil
}

func (s *Store) Init(ctx context.Context) error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool parameters to avoid connection exhaustion
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(constants.AppName)); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db

	if err := s.runMigrations(); err != nil {
		s.db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Store) runMigrations() error {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return fmt.Errorf("failed to access postgres migrations: %w", err)
	}

	runner := migration.NewRunner(s.db, subFS, migration.Postgres)
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "backend", "postgres")
	})
	return err
}

func (s *Store) Clients() remote.Table[models.Client]    { return s.clients }
func (s *Store) Cards() remote.Table[models.ContentCard] { return s.cards }

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Endpoint returns a non-sensitive identifier instead of the full connection string.
func (s *Store) Endpoint() string {
	u, err := url.Parse(s.connStr)
	if err != nil {
		return "postgresql"
	}
	return "postgresql://" + u.Host + u.Path
}
