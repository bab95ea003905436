package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/abrezinsky/aesops/internal/errors"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/metrics"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/pairing"
	"github.com/abrezinsky/aesops/internal/repository"
	"github.com/abrezinsky/aesops/internal/standings"
)

// MaxGameScore is the most points a player can take from one game.
const MaxGameScore = pairing.WinPoints

// PairOptions controls PairRound
type PairOptions struct {
	// Repair discards the round's current pairings and pairs it again.
	// Only allowed while no game result has been reported.
	Repair bool `json:"repair"`
}

// Outcome is a shorthand for a table result
type Outcome string

const (
	OutcomeCorpWin   Outcome = "corp_win"
	OutcomeRunnerWin Outcome = "runner_win"
	OutcomeDraw      Outcome = "draw"
)

// Scores returns the points each side receives.
func (o Outcome) Scores() (corp, runner int, ok bool) {
	switch o {
	case OutcomeCorpWin:
		return pairing.WinPoints, 0, true
	case OutcomeRunnerWin:
		return 0, pairing.WinPoints, true
	case OutcomeDraw:
		return pairing.DrawPoints, pairing.DrawPoints, true
	default:
		return 0, 0, false
	}
}

// TableResult is one row of a bulk result import
type TableResult struct {
	Table       int   `json:"table"`
	CorpID      int64 `json:"corp_id"`
	RunnerID    int64 `json:"runner_id"`
	CorpScore   int   `json:"corp_score"`
	RunnerScore int   `json:"runner_score"`
}

// RoundServiceRepository defines the repository methods needed by RoundService
type RoundServiceRepository interface {
	repository.TournamentRepository
	repository.ParticipantRepository
	repository.RoundRepository
}

// RoundService pairs rounds, records results and closes rounds
type RoundService struct {
	log         logger.Logger
	repo        RoundServiceRepository
	metrics     metrics.Recorder
	tie         pairing.TieBreaker
	locks       *tournamentLocks
	broadcaster Broadcaster
}

// NewRoundService creates a new RoundService. A nil recorder disables metrics
// and a nil tie breaker uses a clock-seeded coin.
func NewRoundService(log logger.Logger, repo RoundServiceRepository, rec metrics.Recorder, tie pairing.TieBreaker) *RoundService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	if tie == nil {
		tie = pairing.NewRandomTieBreaker(0)
	}
	return &RoundService{
		log:     log,
		repo:    repo,
		metrics: rec,
		tie:     tie,
		locks:   newTournamentLocks(),
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *RoundService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *RoundService) tournament(ctx context.Context, id int64) (*models.Tournament, error) {
	t, err := s.repo.GetTournament(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "tournament")
	}
	return t, nil
}

// PairRound pairs the tournament's current round from its active
// participants and stores the tables.
func (s *RoundService) PairRound(ctx context.Context, tournamentID int64, round int, opts PairOptions) (*models.Round, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	t, err := s.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !t.Started() {
		return nil, ErrTournamentNotStarted
	}
	if round != t.CurrentRound {
		return nil, errors.Validationf("round %d is not the current round (%d)", round, t.CurrentRound)
	}

	existing, err := s.repo.GetRound(ctx, tournamentID, round)
	switch {
	case err == nil:
		if existing.Status == models.RoundClosed {
			return nil, errors.Conflictf("round %d is closed", round)
		}
		if !opts.Repair {
			return nil, errors.Conflictf("round %d is already paired", round)
		}
		for _, m := range existing.Matches {
			if !m.IsBye && m.Reported() {
				return nil, errors.Conflictf("round %d has reported results and cannot be re-paired", round)
			}
		}
	case !stderrors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	active, err := s.repo.ListActiveParticipants(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	engine := pairing.NewEngine(pairing.WithScoreFactor(t.ScoreFactor), pairing.WithTieBreaker(s.tie))
	matches, err := engine.Pair(tournamentID, round, active)
	if err != nil {
		s.metrics.PairingFailed()
		s.log.Warn("Pairing failed", "tournament_id", tournamentID, "round", round, "error", err)
		return nil, err
	}
	if err := s.repo.CreatePairings(ctx, tournamentID, round, matches); err != nil {
		return nil, fromRepo(err, "round")
	}

	byes := 0
	for _, m := range matches {
		if m.IsBye {
			byes++
		}
	}
	s.metrics.RoundPaired(len(matches), byes, time.Since(start))
	s.log.Info("Round paired", "tournament_id", tournamentID, "round", round,
		"tables", len(matches), "byes", byes, "repair", opts.Repair)

	rd, err := s.getRound(ctx, tournamentID, round)
	if err != nil {
		return nil, err
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastRoundPaired(rd)
	}
	return rd, nil
}

// DeletePairings removes an unclosed round's tables
func (s *RoundService) DeletePairings(ctx context.Context, tournamentID int64, round int) error {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	if _, err := s.tournament(ctx, tournamentID); err != nil {
		return err
	}
	if err := s.repo.DeletePairings(ctx, tournamentID, round); err != nil {
		return fromRepo(err, "round")
	}
	s.log.Info("Pairings deleted", "tournament_id", tournamentID, "round", round)
	return nil
}

// GetRound returns a round with its tables and derived status
func (s *RoundService) GetRound(ctx context.Context, tournamentID int64, round int) (*models.Round, error) {
	if _, err := s.tournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.getRound(ctx, tournamentID, round)
}

func (s *RoundService) getRound(ctx context.Context, tournamentID int64, round int) (*models.Round, error) {
	rd, err := s.repo.GetRound(ctx, tournamentID, round)
	if err != nil {
		return nil, fromRepo(err, "round")
	}
	rd.Status = models.DeriveRoundStatus(rd.Status, rd.Matches)
	return rd, nil
}

// ListRounds returns every paired or closed round
func (s *RoundService) ListRounds(ctx context.Context, tournamentID int64) ([]models.Round, error) {
	if _, err := s.tournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	rounds, err := s.repo.ListRounds(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if rounds == nil {
		rounds = []models.Round{}
	}
	for i := range rounds {
		rounds[i].Status = models.DeriveRoundStatus(rounds[i].Status, rounds[i].Matches)
	}
	return rounds, nil
}

func validScores(corp, runner int) bool {
	return corp >= 0 && corp <= MaxGameScore && runner >= 0 && runner <= MaxGameScore
}

// ReportResult records the scores of one table. Bye tables are scored at
// pairing time and are returned unchanged.
func (s *RoundService) ReportResult(ctx context.Context, matchID int64, corpScore, runnerScore int) (*models.Match, error) {
	if !validScores(corpScore, runnerScore) {
		return nil, ErrInvalidScore
	}
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fromRepo(err, "match")
	}
	if m.IsBye {
		return m, nil
	}

	unlock := s.locks.lock(m.TournamentID)
	defer unlock()
	if err := s.repo.RecordResult(ctx, matchID, corpScore, runnerScore); err != nil {
		return nil, fromRepo(err, "match")
	}
	s.metrics.ResultsReported("single", 1)
	s.log.Info("Result reported", "match_id", matchID, "round", m.Round, "table", m.Table,
		"corp_score", corpScore, "runner_score", runnerScore)

	updated, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fromRepo(err, "match")
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastResultReported(updated)
	}
	return updated, nil
}

// ReportOutcome records a table result given as a win, loss or draw
func (s *RoundService) ReportOutcome(ctx context.Context, matchID int64, outcome Outcome) (*models.Match, error) {
	corp, runner, ok := outcome.Scores()
	if !ok {
		return nil, ErrInvalidOutcome
	}
	return s.ReportResult(ctx, matchID, corp, runner)
}

// ImportResults records many tables of one round at once. Every row is
// checked against the stored pairings before anything is written, and a
// single mismatch rejects the whole batch.
func (s *RoundService) ImportResults(ctx context.Context, tournamentID int64, round int, results []TableResult) (int, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	rd, err := s.repo.GetRound(ctx, tournamentID, round)
	if err != nil {
		return 0, fromRepo(err, "round")
	}
	if rd.Status == models.RoundClosed {
		return 0, errors.Conflictf("round %d is closed", round)
	}

	byTable := make(map[int]models.Match, len(rd.Matches))
	for _, m := range rd.Matches {
		byTable[m.Table] = m
	}

	batch := make([]repository.Result, 0, len(results))
	seen := make(map[int]bool, len(results))
	for _, r := range results {
		m, ok := byTable[r.Table]
		if !ok {
			return 0, errors.Validationf("table %d does not exist in round %d", r.Table, round)
		}
		if seen[r.Table] {
			return 0, errors.Validationf("table %d appears more than once", r.Table)
		}
		seen[r.Table] = true
		if m.CorpID != r.CorpID || (!m.IsBye && m.RunnerID != r.RunnerID) {
			return 0, errors.Validationf("table %d participants do not match the pairings", r.Table)
		}
		if !validScores(r.CorpScore, r.RunnerScore) {
			return 0, ErrInvalidScore
		}
		if m.IsBye {
			continue
		}
		batch = append(batch, repository.Result{MatchID: m.ID, CorpScore: r.CorpScore, RunnerScore: r.RunnerScore})
	}

	if err := s.repo.RecordResults(ctx, batch); err != nil {
		return 0, fromRepo(err, "match")
	}
	s.metrics.ResultsReported("import", len(batch))
	s.log.Info("Results imported", "tournament_id", tournamentID, "round", round, "count", len(batch))
	return len(batch), nil
}

// CloseRound scores a fully reported round, updates every participant's
// statistics and advances the tournament. The new standings are returned.
func (s *RoundService) CloseRound(ctx context.Context, tournamentID int64, round int) ([]standings.Standing, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	start := time.Now()
	if _, err := s.tournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	rd, err := s.repo.GetRound(ctx, tournamentID, round)
	if err != nil {
		return nil, fromRepo(err, "round")
	}
	if rd.Status == models.RoundClosed {
		return nil, errors.Conflictf("round %d is already closed", round)
	}

	var missing []int
	for _, m := range rd.Matches {
		if !m.Reported() {
			missing = append(missing, m.Table)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteResultsError{Round: round, Tables: missing}
	}

	participants, err := s.repo.ListParticipants(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	updated, err := standings.Close(participants, round, rd.Matches)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConflict, "round results are inconsistent with history")
	}
	if err := s.repo.CloseRound(ctx, tournamentID, round, updated); err != nil {
		return nil, fromRepo(err, "round")
	}

	s.metrics.RoundClosed(len(updated), time.Since(start))
	s.log.Info("Round closed", "tournament_id", tournamentID, "round", round, "participants", len(updated))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastRoundClosed(tournamentID, round)
	}
	return standings.Table(updated), nil
}
