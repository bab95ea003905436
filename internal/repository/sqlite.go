package repository

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and migrates it.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// A single connection keeps :memory: databases shared and writes serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS tournaments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			public_id TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			current_round INTEGER NOT NULL DEFAULT 0,
			score_factor INTEGER NOT NULL DEFAULT 3,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tournament_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			corp_identity TEXT NOT NULL DEFAULT '',
			runner_identity TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			side_bias INTEGER NOT NULL DEFAULT 0,
			opponents TEXT NOT NULL DEFAULT '{}',
			sos REAL NOT NULL DEFAULT 0,
			esos REAL NOT NULL DEFAULT 0,
			received_bye BOOLEAN NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT 1,
			FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			tournament_id INTEGER NOT NULL,
			number INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'paired',
			paired_at DATETIME NOT NULL,
			closed_at DATETIME,
			PRIMARY KEY (tournament_id, number),
			FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tournament_id INTEGER NOT NULL,
			round INTEGER NOT NULL,
			table_number INTEGER NOT NULL,
			corp_id INTEGER NOT NULL,
			runner_id INTEGER,
			corp_score INTEGER,
			runner_score INTEGER,
			is_bye BOOLEAN NOT NULL DEFAULT 0,
			FOREIGN KEY (tournament_id, round) REFERENCES rounds(tournament_id, number) ON DELETE CASCADE,
			FOREIGN KEY (corp_id) REFERENCES participants(id),
			FOREIGN KEY (runner_id) REFERENCES participants(id),
			UNIQUE (tournament_id, round, table_number)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_tournament ON participants(tournament_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_round ON matches(tournament_id, round)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_corp ON matches(corp_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_runner ON matches(runner_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// withTx runs fn in a transaction, committing only if fn succeeds.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// ==================== Settings Methods ====================

// GetSetting returns the value stored under key, or "" when unset.
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting stores value under key.
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
