package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abrezinsky/aesops/internal/models"
)

// Result is a reported score for one match.
type Result struct {
	MatchID     int64
	CorpScore   int
	RunnerScore int
}

const matchSelect = `
	SELECT m.id, m.tournament_id, m.round, m.table_number, m.corp_id, m.runner_id,
	       m.corp_score, m.runner_score, m.is_bye, c.name, r.name
	FROM matches m
	JOIN participants c ON c.id = m.corp_id
	LEFT JOIN participants r ON r.id = m.runner_id`

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var runnerID, corpScore, runnerScore sql.NullInt64
	var runnerName sql.NullString
	if err := row.Scan(&m.ID, &m.TournamentID, &m.Round, &m.Table, &m.CorpID, &runnerID,
		&corpScore, &runnerScore, &m.IsBye, &m.CorpName, &runnerName); err != nil {
		return nil, err
	}
	if runnerID.Valid {
		m.RunnerID = runnerID.Int64
	}
	if corpScore.Valid {
		m.CorpScore = models.IntPtr(int(corpScore.Int64))
	}
	if runnerScore.Valid {
		m.RunnerScore = models.IntPtr(int(runnerScore.Int64))
	}
	if m.IsBye {
		m.RunnerName = "Bye"
	} else {
		m.RunnerName = runnerName.String
	}
	return &m, nil
}

func (r *Repository) queryMatches(ctx context.Context, query string, args ...any) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// GetMatch returns one match.
func (r *Repository) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, matchSelect+` WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// ListMatches returns a round's matches by table, or every match when round is 0.
func (r *Repository) ListMatches(ctx context.Context, tournamentID int64, round int) ([]models.Match, error) {
	if round == 0 {
		return r.queryMatches(ctx, matchSelect+`
			WHERE m.tournament_id = ? ORDER BY m.round, m.table_number`, tournamentID)
	}
	return r.queryMatches(ctx, matchSelect+`
		WHERE m.tournament_id = ? AND m.round = ? ORDER BY m.table_number`, tournamentID, round)
}

// ListClosedMatches returns the matches of every closed round.
func (r *Repository) ListClosedMatches(ctx context.Context, tournamentID int64) ([]models.Match, error) {
	return r.queryMatches(ctx, matchSelect+`
		JOIN rounds rd ON rd.tournament_id = m.tournament_id AND rd.number = m.round
		WHERE m.tournament_id = ? AND rd.status = ?
		ORDER BY m.round, m.table_number`, tournamentID, models.RoundClosed)
}

func scanRound(row rowScanner) (*models.Round, error) {
	var rd models.Round
	var closedAt sql.NullTime
	if err := row.Scan(&rd.TournamentID, &rd.Number, &rd.Status, &rd.PairedAt, &closedAt); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		rd.ClosedAt = &t
	}
	return &rd, nil
}

// GetRound returns a paired or closed round with its matches.
// An unpaired round yields ErrNotFound.
func (r *Repository) GetRound(ctx context.Context, tournamentID int64, number int) (*models.Round, error) {
	rd, err := scanRound(r.db.QueryRowContext(ctx, `
		SELECT tournament_id, number, status, paired_at, closed_at
		FROM rounds WHERE tournament_id = ? AND number = ?
	`, tournamentID, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if rd.Matches, err = r.ListMatches(ctx, tournamentID, number); err != nil {
		return nil, err
	}
	return rd, nil
}

// ListRounds returns all stored rounds in order, each with its matches.
func (r *Repository) ListRounds(ctx context.Context, tournamentID int64) ([]models.Round, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tournament_id, number, status, paired_at, closed_at
		FROM rounds WHERE tournament_id = ? ORDER BY number
	`, tournamentID)
	if err != nil {
		return nil, err
	}
	var rounds []models.Round
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		rounds = append(rounds, *rd)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	matches, err := r.ListMatches(ctx, tournamentID, 0)
	if err != nil {
		return nil, err
	}
	index := make(map[int]int, len(rounds))
	for i, rd := range rounds {
		index[rd.Number] = i
	}
	for _, m := range matches {
		if i, ok := index[m.Round]; ok {
			rounds[i].Matches = append(rounds[i].Matches, m)
		}
	}
	return rounds, nil
}

func roundStatus(ctx context.Context, tx *sql.Tx, tournamentID int64, number int) (models.RoundStatus, error) {
	var status models.RoundStatus
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM rounds WHERE tournament_id = ? AND number = ?`, tournamentID, number).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoundUnpaired, nil
	}
	return status, err
}

// CreatePairings replaces a round's matches atomically and marks the round
// paired. Match IDs are written back into matches.
func (r *Repository) CreatePairings(ctx context.Context, tournamentID int64, round int, matches []models.Match) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		status, err := roundStatus(ctx, tx, tournamentID, round)
		if err != nil {
			return err
		}
		if status == models.RoundClosed {
			return ErrRoundClosed
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM matches WHERE tournament_id = ? AND round = ?`, tournamentID, round); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rounds (tournament_id, number, status, paired_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(tournament_id, number) DO UPDATE SET status = excluded.status, paired_at = excluded.paired_at
		`, tournamentID, round, models.RoundPaired, time.Now().UTC()); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO matches (tournament_id, round, table_number, corp_id, runner_id, corp_score, runner_score, is_bye)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range matches {
			m := &matches[i]
			var runner any
			if !m.IsBye {
				runner = m.RunnerID
			}
			result, err := stmt.ExecContext(ctx, tournamentID, round, m.Table, m.CorpID, runner,
				nullableInt(m.CorpScore), nullableInt(m.RunnerScore), m.IsBye)
			if err != nil {
				return fmt.Errorf("inserting table %d: %w", m.Table, err)
			}
			if m.ID, err = result.LastInsertId(); err != nil {
				return err
			}
			m.TournamentID, m.Round = tournamentID, round
		}
		return nil
	})
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// DeletePairings removes an unclosed round and its matches.
func (r *Repository) DeletePairings(ctx context.Context, tournamentID int64, round int) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		status, err := roundStatus(ctx, tx, tournamentID, round)
		if err != nil {
			return err
		}
		switch status {
		case models.RoundUnpaired:
			return ErrNotFound
		case models.RoundClosed:
			return ErrRoundClosed
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM matches WHERE tournament_id = ? AND round = ?`, tournamentID, round); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM rounds WHERE tournament_id = ? AND number = ?`, tournamentID, round)
		return err
	})
}

// RecordResult stores the scores of one match in an open round.
func (r *Repository) RecordResult(ctx context.Context, matchID int64, corpScore, runnerScore int) error {
	return r.RecordResults(ctx, []Result{{MatchID: matchID, CorpScore: corpScore, RunnerScore: runnerScore}})
}

// RecordResults stores several results atomically. Any match in a closed
// round fails the whole batch.
func (r *Repository) RecordResults(ctx context.Context, results []Result) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, res := range results {
			var status models.RoundStatus
			err := tx.QueryRowContext(ctx, `
				SELECT rd.status FROM matches m
				JOIN rounds rd ON rd.tournament_id = m.tournament_id AND rd.number = m.round
				WHERE m.id = ?
			`, res.MatchID).Scan(&status)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			if status == models.RoundClosed {
				return ErrRoundClosed
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE matches SET corp_score = ?, runner_score = ? WHERE id = ?`,
				res.CorpScore, res.RunnerScore, res.MatchID); err != nil {
				return err
			}
		}
		return nil
	})
}

// CloseRound persists the participants' new statistics, marks the round
// closed and advances the tournament to the next round, all atomically.
func (r *Repository) CloseRound(ctx context.Context, tournamentID int64, round int, participants []models.Participant) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		status, err := roundStatus(ctx, tx, tournamentID, round)
		if err != nil {
			return err
		}
		switch status {
		case models.RoundUnpaired:
			return ErrNotFound
		case models.RoundClosed:
			return ErrRoundClosed
		}

		if err := updateStats(ctx, tx, participants); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE rounds SET status = ?, closed_at = ? WHERE tournament_id = ? AND number = ?
		`, models.RoundClosed, time.Now().UTC(), tournamentID, round); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE tournaments SET current_round = ? WHERE id = ?`, round+1, tournamentID)
		if err != nil {
			return err
		}
		return expectOne(result)
	})
}
