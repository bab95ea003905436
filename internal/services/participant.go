package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/aesops/internal/errors"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/repository"
	"github.com/abrezinsky/aesops/internal/roster"
)

// Registration holds the editable fields of a participant
type Registration struct {
	Name           string `json:"name"`
	CorpIdentity   string `json:"corp_identity"`
	RunnerIdentity string `json:"runner_identity"`
	// Force allows registering after the tournament has started.
	Force bool `json:"force"`
}

// ParticipantServiceRepository defines the repository methods needed by ParticipantService
type ParticipantServiceRepository interface {
	repository.TournamentRepository
	repository.ParticipantRepository
}

// ParticipantService handles registration
type ParticipantService struct {
	log         logger.Logger
	repo        ParticipantServiceRepository
	broadcaster Broadcaster
}

// NewParticipantService creates a new ParticipantService
func NewParticipantService(log logger.Logger, repo ParticipantServiceRepository) *ParticipantService {
	return &ParticipantService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *ParticipantService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *ParticipantService) tournament(ctx context.Context, id int64) (*models.Tournament, error) {
	t, err := s.repo.GetTournament(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "tournament")
	}
	return t, nil
}

// Register adds a participant. Late entries need req.Force and start with
// no points.
func (s *ParticipantService) Register(ctx context.Context, tournamentID int64, req Registration) (*models.Participant, error) {
	t, err := s.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Started() && !req.Force {
		return nil, ErrTournamentStarted
	}
	existing, err := s.repo.ListParticipants(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.register(ctx, t, req, existing)
}

func (s *ParticipantService) register(ctx context.Context, t *models.Tournament, req Registration, existing []models.Participant) (*models.Participant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, name) {
			return nil, errors.Conflictf("participant %q is already registered", name)
		}
	}

	p := &models.Participant{
		TournamentID:   t.ID,
		Name:           name,
		CorpIdentity:   strings.TrimSpace(req.CorpIdentity),
		RunnerIdentity: strings.TrimSpace(req.RunnerIdentity),
		Opponents:      models.History{},
		Active:         true,
	}
	id, err := s.repo.CreateParticipant(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	s.log.Info("Participant registered", "tournament_id", t.ID, "participant_id", id, "name", name, "late", t.Started())
	s.notify(p)
	return p, nil
}

// ImportRoster registers every entry of a CSV or XLSX roster. The file is
// fully parsed and checked for clashes before anything is stored.
func (s *ParticipantService) ImportRoster(ctx context.Context, tournamentID int64, filename string, data []byte, force bool) ([]models.Participant, error) {
	t, err := s.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Started() && !force {
		return nil, ErrTournamentStarted
	}
	entries, err := roster.Parse(filename, data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid roster")
	}
	existing, err := s.repo.ListParticipants(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		for _, p := range existing {
			if strings.EqualFold(p.Name, e.Name) {
				return nil, errors.Conflictf("participant %q is already registered", e.Name)
			}
		}
	}

	created := make([]models.Participant, 0, len(entries))
	for _, e := range entries {
		p, err := s.register(ctx, t, Registration{
			Name:           e.Name,
			CorpIdentity:   e.CorpIdentity,
			RunnerIdentity: e.RunnerIdentity,
		}, existing)
		if err != nil {
			return created, err
		}
		created = append(created, *p)
	}
	s.log.Info("Roster imported", "tournament_id", tournamentID, "file", filename, "count", len(created))
	return created, nil
}

// ListParticipants returns every participant including dropped ones
func (s *ParticipantService) ListParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error) {
	if _, err := s.tournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListParticipants(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Participant{}
	}
	return list, nil
}

// GetParticipant returns one participant
func (s *ParticipantService) GetParticipant(ctx context.Context, id int64) (*models.Participant, error) {
	p, err := s.repo.GetParticipant(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "participant")
	}
	return p, nil
}

// UpdateParticipant changes name and identities. Statistics are untouched.
func (s *ParticipantService) UpdateParticipant(ctx context.Context, id int64, req Registration) (*models.Participant, error) {
	p, err := s.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	others, err := s.repo.ListParticipants(ctx, p.TournamentID)
	if err != nil {
		return nil, err
	}
	for _, o := range others {
		if o.ID != id && strings.EqualFold(o.Name, name) {
			return nil, errors.Conflictf("participant %q is already registered", name)
		}
	}
	if err := s.repo.UpdateParticipantDetails(ctx, id, name,
		strings.TrimSpace(req.CorpIdentity), strings.TrimSpace(req.RunnerIdentity)); err != nil {
		return nil, fromRepo(err, "participant")
	}
	return s.reload(ctx, id)
}

// Drop removes a participant from future pairings. Past results stay.
func (s *ParticipantService) Drop(ctx context.Context, id int64) (*models.Participant, error) {
	return s.setActive(ctx, id, false)
}

// Undrop returns a dropped participant to future pairings.
func (s *ParticipantService) Undrop(ctx context.Context, id int64) (*models.Participant, error) {
	return s.setActive(ctx, id, true)
}

func (s *ParticipantService) setActive(ctx context.Context, id int64, active bool) (*models.Participant, error) {
	if err := s.repo.SetParticipantActive(ctx, id, active); err != nil {
		return nil, fromRepo(err, "participant")
	}
	s.log.Info("Participant status changed", "participant_id", id, "active", active)
	return s.reload(ctx, id)
}

// Remove deletes a participant. Only allowed during registration.
func (s *ParticipantService) Remove(ctx context.Context, id int64) error {
	p, err := s.GetParticipant(ctx, id)
	if err != nil {
		return err
	}
	t, err := s.tournament(ctx, p.TournamentID)
	if err != nil {
		return err
	}
	if t.Started() {
		return errors.Conflictf("cannot remove a participant after the tournament has started, drop them instead")
	}
	if err := s.repo.DeleteParticipant(ctx, id); err != nil {
		return fromRepo(err, "participant")
	}
	s.log.Info("Participant removed", "participant_id", id, "name", p.Name)
	return nil
}

func (s *ParticipantService) reload(ctx context.Context, id int64) (*models.Participant, error) {
	p, err := s.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(p)
	return p, nil
}

func (s *ParticipantService) notify(p *models.Participant) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastParticipantUpdated(p)
	}
}
