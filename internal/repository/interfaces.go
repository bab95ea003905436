package repository

import (
	"context"

	"github.com/abrezinsky/aesops/internal/models"
)

// TournamentRepository defines tournament data operations
type TournamentRepository interface {
	CreateTournament(ctx context.Context, t *models.Tournament) (int64, error)
	GetTournament(ctx context.Context, id int64) (*models.Tournament, error)
	GetTournamentByPublicID(ctx context.Context, publicID string) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	SwapCurrentRound(ctx context.Context, id int64, from, to int) error
}

// ParticipantRepository defines participant data operations
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, p *models.Participant) (int64, error)
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)
	ListParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error)
	ListActiveParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error)
	UpdateParticipantDetails(ctx context.Context, id int64, name, corpIdentity, runnerIdentity string) error
	SetParticipantActive(ctx context.Context, id int64, active bool) error
	DeleteParticipant(ctx context.Context, id int64) error
	UpdateParticipantStats(ctx context.Context, participants []models.Participant) error
}

// RoundRepository defines round and match data operations
type RoundRepository interface {
	GetRound(ctx context.Context, tournamentID int64, number int) (*models.Round, error)
	ListRounds(ctx context.Context, tournamentID int64) ([]models.Round, error)
	CreatePairings(ctx context.Context, tournamentID int64, round int, matches []models.Match) error
	DeletePairings(ctx context.Context, tournamentID int64, round int) error
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int64, round int) ([]models.Match, error)
	ListClosedMatches(ctx context.Context, tournamentID int64) ([]models.Match, error)
	RecordResult(ctx context.Context, matchID int64, corpScore, runnerScore int) error
	RecordResults(ctx context.Context, results []Result) error
	CloseRound(ctx context.Context, tournamentID int64, round int, participants []models.Participant) error
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	TournamentRepository
	ParticipantRepository
	RoundRepository
	SettingsRepository
	Ping(ctx context.Context) error
}

var _ FullRepository = (*Repository)(nil)
