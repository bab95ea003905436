package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/abrezinsky/aesops/internal/models"
)

const tournamentColumns = `id, public_id, title, date, current_round, score_factor, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var t models.Tournament
	var createdAt sql.NullTime
	if err := row.Scan(&t.ID, &t.PublicID, &t.Title, &t.Date, &t.CurrentRound, &t.ScoreFactor, &createdAt); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	return &t, nil
}

// CreateTournament inserts t and returns its new ID.
func (r *Repository) CreateTournament(ctx context.Context, t *models.Tournament) (int64, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO tournaments (public_id, title, date, current_round, score_factor, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.PublicID, t.Title, t.Date, t.CurrentRound, t.ScoreFactor, t.CreatedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetTournament returns the tournament with the given ID.
func (r *Repository) GetTournament(ctx context.Context, id int64) (*models.Tournament, error) {
	t, err := scanTournament(r.db.QueryRowContext(ctx,
		`SELECT `+tournamentColumns+` FROM tournaments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// GetTournamentByPublicID looks a tournament up by its shareable ID.
func (r *Repository) GetTournamentByPublicID(ctx context.Context, publicID string) (*models.Tournament, error) {
	t, err := scanTournament(r.db.QueryRowContext(ctx,
		`SELECT `+tournamentColumns+` FROM tournaments WHERE public_id = ?`, publicID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ListTournaments returns every tournament, newest first.
func (r *Repository) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tournamentColumns+` FROM tournaments ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// SwapCurrentRound moves the tournament's round pointer from one round to
// another. ErrRoundChanged is returned if the tournament is not on from.
func (r *Repository) SwapCurrentRound(ctx context.Context, id int64, from, to int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET current_round = ? WHERE id = ? AND current_round = ?`, to, id, from)
	if err != nil {
		return err
	}
	if err := expectOne(result); err != ErrNotFound {
		return err
	}
	if _, err := r.GetTournament(ctx, id); err != nil {
		return err
	}
	return ErrRoundChanged
}

func expectOne(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
