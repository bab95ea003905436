package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/aesops/internal/errors"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/pairing"
	"github.com/abrezinsky/aesops/internal/repository"
)

// CreateTournament holds the fields needed to create a tournament
type CreateTournament struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	ScoreFactor int    `json:"score_factor"`
}

// TournamentServiceRepository defines the repository methods needed by TournamentService
type TournamentServiceRepository interface {
	repository.TournamentRepository
	repository.ParticipantRepository
}

// TournamentService handles tournament lifecycle
type TournamentService struct {
	log                logger.Logger
	repo               TournamentServiceRepository
	rounds             RoundServicer
	defaultScoreFactor int
	now                func() time.Time
}

// NewTournamentService creates a new TournamentService
func NewTournamentService(log logger.Logger, repo TournamentServiceRepository, rounds RoundServicer, defaultScoreFactor int) *TournamentService {
	if defaultScoreFactor <= 0 {
		defaultScoreFactor = pairing.DefaultScoreFactor
	}
	return &TournamentService{
		log:                log,
		repo:               repo,
		rounds:             rounds,
		defaultScoreFactor: defaultScoreFactor,
		now:                time.Now,
	}
}

// CreateTournament validates and stores a new tournament. Date defaults to
// today and the score factor to the configured default.
func (s *TournamentService) CreateTournament(ctx context.Context, req CreateTournament) (*models.Tournament, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.now().Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, errors.Validationf("invalid date %q, expected YYYY-MM-DD", date)
	}
	if req.ScoreFactor < 0 {
		return nil, errors.Validationf("score factor must be positive")
	}
	factor := req.ScoreFactor
	if factor == 0 {
		factor = s.defaultScoreFactor
	}

	t := &models.Tournament{
		PublicID:    uuid.NewString(),
		Title:       title,
		Date:        date,
		ScoreFactor: factor,
	}
	id, err := s.repo.CreateTournament(ctx, t)
	if err != nil {
		return nil, err
	}
	s.log.Info("Tournament created", "tournament_id", id, "title", title, "score_factor", factor)
	return s.repo.GetTournament(ctx, id)
}

// GetTournament returns one tournament
func (s *TournamentService) GetTournament(ctx context.Context, id int64) (*models.Tournament, error) {
	t, err := s.repo.GetTournament(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "tournament")
	}
	return t, nil
}

// GetTournamentByPublicID returns the tournament with the shareable ID
func (s *TournamentService) GetTournamentByPublicID(ctx context.Context, publicID string) (*models.Tournament, error) {
	t, err := s.repo.GetTournamentByPublicID(ctx, publicID)
	if err != nil {
		return nil, fromRepo(err, "tournament")
	}
	return t, nil
}

// ListTournaments returns every tournament, newest first
func (s *TournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	list, err := s.repo.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Tournament{}
	}
	return list, nil
}

// StartTournament closes registration and pairs round 1. The tournament is
// returned to registration if the first round cannot be paired.
func (s *TournamentService) StartTournament(ctx context.Context, id int64) (*models.Round, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Started() {
		return nil, ErrTournamentStarted
	}
	active, err := s.repo.ListActiveParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(active) < 2 {
		return nil, ErrTooFewParticipants
	}

	if err := s.repo.SwapCurrentRound(ctx, id, 0, 1); err != nil {
		if stderrors.Is(err, repository.ErrRoundChanged) {
			return nil, ErrTournamentStarted
		}
		return nil, fromRepo(err, "tournament")
	}
	round, err := s.rounds.PairRound(ctx, id, 1, PairOptions{})
	if err != nil {
		if rollback := s.repo.SwapCurrentRound(ctx, id, 1, 0); rollback != nil {
			s.log.Error("Failed to reset tournament after pairing error", "tournament_id", id, "error", rollback)
		}
		return nil, err
	}
	s.log.Info("Tournament started", "tournament_id", id, "participants", len(active))
	return round, nil
}
