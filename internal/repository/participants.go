package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abrezinsky/aesops/internal/models"
)

const participantColumns = `id, tournament_id, name, corp_identity, runner_identity, score, side_bias,
	opponents, sos, esos, received_bye, active`

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	var opponents string
	if err := row.Scan(&p.ID, &p.TournamentID, &p.Name, &p.CorpIdentity, &p.RunnerIdentity,
		&p.Score, &p.SideBias, &opponents, &p.SoS, &p.ESoS, &p.ReceivedBye, &p.Active); err != nil {
		return nil, err
	}
	history, err := decodeHistory(opponents)
	if err != nil {
		return nil, fmt.Errorf("participant %d: %w", p.ID, err)
	}
	p.Opponents = history
	return &p, nil
}

func encodeHistory(h models.History) (string, error) {
	if h == nil {
		h = models.History{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeHistory(s string) (models.History, error) {
	h := models.History{}
	if s == "" {
		return h, nil
	}
	if err := json.Unmarshal([]byte(s), &h); err != nil {
		return nil, fmt.Errorf("decoding opponents: %w", err)
	}
	return h, nil
}

// CreateParticipant registers p and returns the new ID.
func (r *Repository) CreateParticipant(ctx context.Context, p *models.Participant) (int64, error) {
	opponents, err := encodeHistory(p.Opponents)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO participants (tournament_id, name, corp_identity, runner_identity, score, side_bias,
			opponents, sos, esos, received_bye, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.TournamentID, p.Name, p.CorpIdentity, p.RunnerIdentity, p.Score, p.SideBias,
		opponents, p.SoS, p.ESoS, p.ReceivedBye, p.Active)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetParticipant returns a single participant.
func (r *Repository) GetParticipant(ctx context.Context, id int64) (*models.Participant, error) {
	p, err := scanParticipant(r.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListParticipants returns every participant of a tournament, dropped ones
// included, in registration order.
func (r *Repository) ListParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error) {
	return r.queryParticipants(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE tournament_id = ? ORDER BY id`, tournamentID)
}

// ListActiveParticipants returns the participants still in the event, in registration order.
func (r *Repository) ListActiveParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error) {
	return r.queryParticipants(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE tournament_id = ? AND active = 1 ORDER BY id`, tournamentID)
}

func (r *Repository) queryParticipants(ctx context.Context, query string, args ...any) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateParticipantDetails changes the registration fields of a participant.
func (r *Repository) UpdateParticipantDetails(ctx context.Context, id int64, name, corpIdentity, runnerIdentity string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE participants SET name = ?, corp_identity = ?, runner_identity = ? WHERE id = ?
	`, name, corpIdentity, runnerIdentity, id)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// SetParticipantActive drops (false) or reinstates (true) a participant.
func (r *Repository) SetParticipantActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE participants SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// DeleteParticipant removes a participant who has no matches.
func (r *Repository) DeleteParticipant(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// UpdateParticipantStats writes score, bias, history, SoS and ESoS for all
// given participants in one transaction.
func (r *Repository) UpdateParticipantStats(ctx context.Context, participants []models.Participant) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return updateStats(ctx, tx, participants)
	})
}

func updateStats(ctx context.Context, tx *sql.Tx, participants []models.Participant) error {
	stmt, err := tx.PrepareContext(ctx, `
		UPDATE participants
		SET score = ?, side_bias = ?, opponents = ?, sos = ?, esos = ?, received_bye = ?
		WHERE id = ?
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range participants {
		if p.IsBye {
			continue
		}
		opponents, err := encodeHistory(p.Opponents)
		if err != nil {
			return err
		}
		result, err := stmt.ExecContext(ctx, p.Score, p.SideBias, opponents, p.SoS, p.ESoS, p.ReceivedBye, p.ID)
		if err != nil {
			return fmt.Errorf("updating participant %d: %w", p.ID, err)
		}
		if err := expectOne(result); err != nil {
			return fmt.Errorf("updating participant %d: %w", p.ID, err)
		}
	}
	return nil
}
