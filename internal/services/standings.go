package services

import (
	"context"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/aesops/internal/export"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/repository"
	"github.com/abrezinsky/aesops/internal/standings"
)

// StandingsServiceRepository defines the repository methods needed by StandingsService
type StandingsServiceRepository interface {
	repository.TournamentRepository
	repository.ParticipantRepository
	repository.RoundRepository
}

// StandingsService handles rankings, statistics and exports
type StandingsService struct {
	log      logger.Logger
	repo     StandingsServiceRepository
	settings SettingsServicer
}

// NewStandingsService creates a new StandingsService
func NewStandingsService(log logger.Logger, repo StandingsServiceRepository, settings SettingsServicer) *StandingsService {
	return &StandingsService{log: log, repo: repo, settings: settings}
}

func (s *StandingsService) tournament(ctx context.Context, id int64) (*models.Tournament, error) {
	t, err := s.repo.GetTournament(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "tournament")
	}
	return t, nil
}

// Standings ranks every participant, dropped ones included
func (s *StandingsService) Standings(ctx context.Context, tournamentID int64) ([]standings.Standing, error) {
	if _, err := s.tournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return standings.Table(participants), nil
}

// Recalculate rebuilds every statistic from the closed rounds' results
func (s *StandingsService) Recalculate(ctx context.Context, tournamentID int64) ([]standings.Standing, error) {
	if _, err := s.tournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := s.repo.ListClosedMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	rebuilt, err := standings.Rebuild(participants, matches)
	if err != nil {
		return nil, fmt.Errorf("rebuilding standings: %w", err)
	}
	if err := s.repo.UpdateParticipantStats(ctx, rebuilt); err != nil {
		return nil, err
	}
	s.log.Info("Standings recalculated", "tournament_id", tournamentID, "matches", len(matches))
	return standings.Table(rebuilt), nil
}

// Stats counts corp wins, runner wins and draws across the tournament
func (s *StandingsService) Stats(ctx context.Context, tournamentID int64) (*models.SideStats, error) {
	if _, err := s.tournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	matches, err := s.repo.ListMatches(ctx, tournamentID, 0)
	if err != nil {
		return nil, err
	}
	stats := standings.Sides(matches)
	return &stats, nil
}

// Export builds the results upload document
func (s *StandingsService) Export(ctx context.Context, tournamentID int64) (*export.Document, error) {
	t, err := s.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.repo.ListRounds(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	selfURL := ""
	if base, err := s.settings.GetBaseURL(ctx); err == nil && base != "" {
		selfURL = publicURL(base, t)
	}
	doc := export.Build(*t, participants, rounds, selfURL)
	return &doc, nil
}

// ExportXLSX renders the export document as a workbook
func (s *StandingsService) ExportXLSX(ctx context.Context, tournamentID int64) ([]byte, error) {
	doc, err := s.Export(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return export.XLSX(*doc)
}

// QRCode returns a PNG linking to the tournament's public page
func (s *StandingsService) QRCode(ctx context.Context, tournamentID int64) ([]byte, error) {
	t, err := s.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	base, err := s.settings.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	if base == "" {
		return nil, ErrBaseURLNotConfigured
	}
	return qrcode.Encode(publicURL(base, t), qrcode.Medium, 256)
}

func publicURL(base string, t *models.Tournament) string {
	return fmt.Sprintf("%s/t/%s", base, t.PublicID)
}
