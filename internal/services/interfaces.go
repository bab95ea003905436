package services

import (
	"context"

	"github.com/abrezinsky/aesops/internal/export"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/standings"
)

// Broadcaster pushes tournament events to connected clients
type Broadcaster interface {
	BroadcastRoundPaired(round *models.Round)
	BroadcastResultReported(match *models.Match)
	BroadcastRoundClosed(tournamentID int64, round int)
	BroadcastParticipantUpdated(p *models.Participant)
}

// TournamentServicer defines the interface for tournament operations
type TournamentServicer interface {
	CreateTournament(ctx context.Context, req CreateTournament) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int64) (*models.Tournament, error)
	GetTournamentByPublicID(ctx context.Context, publicID string) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	StartTournament(ctx context.Context, id int64) (*models.Round, error)
}

// ParticipantServicer defines the interface for registration operations
type ParticipantServicer interface {
	Register(ctx context.Context, tournamentID int64, req Registration) (*models.Participant, error)
	ImportRoster(ctx context.Context, tournamentID int64, filename string, data []byte, force bool) ([]models.Participant, error)
	ListParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error)
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)
	UpdateParticipant(ctx context.Context, id int64, req Registration) (*models.Participant, error)
	Drop(ctx context.Context, id int64) (*models.Participant, error)
	Undrop(ctx context.Context, id int64) (*models.Participant, error)
	Remove(ctx context.Context, id int64) error
}

// RoundServicer defines the interface for pairing and result operations
type RoundServicer interface {
	PairRound(ctx context.Context, tournamentID int64, round int, opts PairOptions) (*models.Round, error)
	DeletePairings(ctx context.Context, tournamentID int64, round int) error
	GetRound(ctx context.Context, tournamentID int64, round int) (*models.Round, error)
	ListRounds(ctx context.Context, tournamentID int64) ([]models.Round, error)
	ReportResult(ctx context.Context, matchID int64, corpScore, runnerScore int) (*models.Match, error)
	ReportOutcome(ctx context.Context, matchID int64, outcome Outcome) (*models.Match, error)
	ImportResults(ctx context.Context, tournamentID int64, round int, results []TableResult) (int, error)
	CloseRound(ctx context.Context, tournamentID int64, round int) ([]standings.Standing, error)
}

// StandingsServicer defines the interface for ranking and export operations
type StandingsServicer interface {
	Standings(ctx context.Context, tournamentID int64) ([]standings.Standing, error)
	Recalculate(ctx context.Context, tournamentID int64) ([]standings.Standing, error)
	Stats(ctx context.Context, tournamentID int64) (*models.SideStats, error)
	Export(ctx context.Context, tournamentID int64) (*export.Document, error)
	ExportXLSX(ctx context.Context, tournamentID int64) ([]byte, error)
	QRCode(ctx context.Context, tournamentID int64) ([]byte, error)
}

// IdentityServicer defines the interface for identity lookups
type IdentityServicer interface {
	ListIdentities(ctx context.Context, side string) ([]models.Identity, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	AllSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) error
}

var (
	_ TournamentServicer  = (*TournamentService)(nil)
	_ ParticipantServicer = (*ParticipantService)(nil)
	_ RoundServicer       = (*RoundService)(nil)
	_ StandingsServicer   = (*StandingsService)(nil)
	_ IdentityServicer    = (*IdentityService)(nil)
	_ SettingsServicer    = (*SettingsService)(nil)
)
