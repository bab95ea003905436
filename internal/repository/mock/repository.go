package mock

import (
	"context"

	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CloseRoundError = errors.New("database error")
//	svc := services.NewRoundService(log, mockRepo, metrics.Noop{}, pairing.FixedTieBreaker(true))
//	err := svc.CloseRound(ctx, tid, 1)
type Repository struct {
	repository.FullRepository

	// ===== Tournament Errors =====
	CreateTournamentError error
	GetTournamentError    error
	ListTournamentsError  error
	SwapCurrentRoundError error

	// ===== Participant Errors =====
	CreateParticipantError      error
	ListParticipantsError       error
	ListActiveParticipantsError error
	UpdateParticipantStatsError error
	SetParticipantActiveError   error

	// ===== Round Errors =====
	CreatePairingsError    error
	ListMatchesError       error
	ListClosedMatchesError error
	RecordResultsError     error
	CloseRoundError        error
	GetRoundError          error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{FullRepository: real}
}

// ===== Tournament Methods =====

func (m *Repository) CreateTournament(ctx context.Context, t *models.Tournament) (int64, error) {
	if m.CreateTournamentError != nil {
		return 0, m.CreateTournamentError
	}
	return m.FullRepository.CreateTournament(ctx, t)
}

func (m *Repository) GetTournament(ctx context.Context, id int64) (*models.Tournament, error) {
	if m.GetTournamentError != nil {
		return nil, m.GetTournamentError
	}
	return m.FullRepository.GetTournament(ctx, id)
}

func (m *Repository) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	if m.ListTournamentsError != nil {
		return nil, m.ListTournamentsError
	}
	return m.FullRepository.ListTournaments(ctx)
}

func (m *Repository) SwapCurrentRound(ctx context.Context, id int64, from, to int) error {
	if m.SwapCurrentRoundError != nil {
		return m.SwapCurrentRoundError
	}
	return m.FullRepository.SwapCurrentRound(ctx, id, from, to)
}

// ===== Participant Methods =====

func (m *Repository) CreateParticipant(ctx context.Context, p *models.Participant) (int64, error) {
	if m.CreateParticipantError != nil {
		return 0, m.CreateParticipantError
	}
	return m.FullRepository.CreateParticipant(ctx, p)
}

func (m *Repository) ListParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error) {
	if m.ListParticipantsError != nil {
		return nil, m.ListParticipantsError
	}
	return m.FullRepository.ListParticipants(ctx, tournamentID)
}

func (m *Repository) ListActiveParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error) {
	if m.ListActiveParticipantsError != nil {
		return nil, m.ListActiveParticipantsError
	}
	return m.FullRepository.ListActiveParticipants(ctx, tournamentID)
}

func (m *Repository) UpdateParticipantStats(ctx context.Context, participants []models.Participant) error {
	if m.UpdateParticipantStatsError != nil {
		return m.UpdateParticipantStatsError
	}
	return m.FullRepository.UpdateParticipantStats(ctx, participants)
}

func (m *Repository) SetParticipantActive(ctx context.Context, id int64, active bool) error {
	if m.SetParticipantActiveError != nil {
		return m.SetParticipantActiveError
	}
	return m.FullRepository.SetParticipantActive(ctx, id, active)
}

// ===== Round Methods =====

func (m *Repository) CreatePairings(ctx context.Context, tournamentID int64, round int, matches []models.Match) error {
	if m.CreatePairingsError != nil {
		return m.CreatePairingsError
	}
	return m.FullRepository.CreatePairings(ctx, tournamentID, round, matches)
}

func (m *Repository) GetRound(ctx context.Context, tournamentID int64, number int) (*models.Round, error) {
	if m.GetRoundError != nil {
		return nil, m.GetRoundError
	}
	return m.FullRepository.GetRound(ctx, tournamentID, number)
}

func (m *Repository) ListMatches(ctx context.Context, tournamentID int64, round int) ([]models.Match, error) {
	if m.ListMatchesError != nil {
		return nil, m.ListMatchesError
	}
	return m.FullRepository.ListMatches(ctx, tournamentID, round)
}

func (m *Repository) ListClosedMatches(ctx context.Context, tournamentID int64) ([]models.Match, error) {
	if m.ListClosedMatchesError != nil {
		return nil, m.ListClosedMatchesError
	}
	return m.FullRepository.ListClosedMatches(ctx, tournamentID)
}

func (m *Repository) RecordResult(ctx context.Context, matchID int64, corpScore, runnerScore int) error {
	if m.RecordResultsError != nil {
		return m.RecordResultsError
	}
	return m.FullRepository.RecordResult(ctx, matchID, corpScore, runnerScore)
}

func (m *Repository) RecordResults(ctx context.Context, results []repository.Result) error {
	if m.RecordResultsError != nil {
		return m.RecordResultsError
	}
	return m.FullRepository.RecordResults(ctx, results)
}

func (m *Repository) CloseRound(ctx context.Context, tournamentID int64, round int, participants []models.Participant) error {
	if m.CloseRoundError != nil {
		return m.CloseRoundError
	}
	return m.FullRepository.CloseRound(ctx, tournamentID, round, participants)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}
