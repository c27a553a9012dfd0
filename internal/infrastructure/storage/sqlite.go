package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			favorite_crypto TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS insights (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			total_volume REAL NOT NULL,
			hot_zone_price REAL NOT NULL,
			long_short_ratio TEXT NOT NULL,
			peak_minutes_ago INTEGER NOT NULL,
			current_price REAL NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_insights_symbol ON insights(symbol, id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// UserDirectory Implementation

func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, favorite_crypto, created_at)
			  VALUES (:id, :username, :email, :password_hash, :favorite_crypto, :created_at)`
	_, err := s.db.NamedExecContext(ctx, query, user)
	return uniqueViolation(err)
}

// uniqueViolation maps sqlite UNIQUE failures to the matching domain error.
func uniqueViolation(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return domain.ErrEmailTaken
	case strings.Contains(msg, "users.username"):
		return domain.ErrUsernameTaken
	}
	return err
}

func (s *SQLiteStore) findUser(ctx context.Context, column, value string) (*domain.User, error) {
	var u domain.User
	query := `SELECT id, username, email, password_hash, favorite_crypto, created_at FROM users WHERE ` + column + ` = ?`
	if err := s.db.GetContext(ctx, &u, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "email", email)
}

func (s *SQLiteStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, "username", username)
}

func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, "id", id)
}

func (s *SQLiteStore) SetFavorite(ctx context.Context, id, symbol string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET favorite_crypto = ? WHERE id = ?`, symbol, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// InsightRepository Implementation

func (s *SQLiteStore) SaveInsight(ctx context.Context, rec *domain.InsightRecord) error {
	query := `INSERT INTO insights (symbol, timeframe, total_volume, hot_zone_price, long_short_ratio, peak_minutes_ago, current_price, created_at)
			  VALUES (:symbol, :timeframe, :total_volume, :hot_zone_price, :long_short_ratio, :peak_minutes_ago, :current_price, :created_at)`
	res, err := s.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// ListInsights returns the newest records for symbol first.
func (s *SQLiteStore) ListInsights(ctx context.Context, symbol string, limit int) ([]*domain.InsightRecord, error) {
	query := `SELECT id, symbol, timeframe, total_volume, hot_zone_price, long_short_ratio, peak_minutes_ago, current_price, created_at
			  FROM insights WHERE symbol = ? ORDER BY id DESC LIMIT ?`
	var records []*domain.InsightRecord
	if err := s.db.SelectContext(ctx, &records, query, symbol, limit); err != nil {
		return nil, err
	}
	return records, nil
}
