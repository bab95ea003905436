package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/pairing"
	"github.com/abrezinsky/aesops/internal/repository"
	"github.com/abrezinsky/aesops/internal/services"
	"github.com/abrezinsky/aesops/internal/testutil"
)

type fixture struct {
	repo         repository.FullRepository
	tournaments  *services.TournamentService
	participants *services.ParticipantService
	rounds       *services.RoundService
	standings    *services.StandingsService
	settings     *services.SettingsService
	recorder     *recordingMetrics
	events       *recordingBroadcaster
}

func newFixture(t *testing.T, repo repository.FullRepository) *fixture {
	t.Helper()
	if repo == nil {
		repo = testutil.NewTestRepository(t)
	}
	log := logger.Nop()
	f := &fixture{
		repo:     repo,
		recorder: &recordingMetrics{},
		events:   &recordingBroadcaster{},
	}
	f.settings = services.NewSettingsService(log, repo, "")
	f.rounds = services.NewRoundService(log, repo, f.recorder, pairing.FixedTieBreaker(true))
	f.rounds.SetBroadcaster(f.events)
	f.participants = services.NewParticipantService(log, repo)
	f.participants.SetBroadcaster(f.events)
	f.tournaments = services.NewTournamentService(log, repo, f.rounds, 0)
	f.standings = services.NewStandingsService(log, repo, f.settings)
	return f
}

// startWith creates a tournament with the given player names and starts it.
func (f *fixture) startWith(t *testing.T, names ...string) (*models.Tournament, *models.Round) {
	t.Helper()
	ctx := context.Background()
	tour, err := f.tournaments.CreateTournament(ctx, services.CreateTournament{Title: "Test Event", Date: "2026-02-01"})
	if err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}
	for _, name := range names {
		if _, err := f.participants.Register(ctx, tour.ID, services.Registration{Name: name}); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}
	rd, err := f.tournaments.StartTournament(ctx, tour.ID)
	if err != nil {
		t.Fatalf("StartTournament failed: %v", err)
	}
	return tour, rd
}

// reportAll gives every non-bye table a corp win.
func (f *fixture) reportAll(t *testing.T, rd *models.Round) {
	t.Helper()
	for _, m := range rd.Matches {
		if m.IsBye {
			continue
		}
		if _, err := f.rounds.ReportOutcome(context.Background(), m.ID, services.OutcomeCorpWin); err != nil {
			t.Fatalf("ReportOutcome(table %d) failed: %v", m.Table, err)
		}
	}
}

type recordingMetrics struct {
	mu       sync.Mutex
	paired   int
	failed   int
	closed   int
	reported int
}

func (r *recordingMetrics) RoundPaired(tables, byes int, took time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paired++
}

func (r *recordingMetrics) PairingFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}

func (r *recordingMetrics) RoundClosed(participants int, took time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
}

func (r *recordingMetrics) ResultsReported(source string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported += n
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) add(e string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBroadcaster) count(e string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, got := range b.events {
		if got == e {
			n++
		}
	}
	return n
}

func (b *recordingBroadcaster) BroadcastRoundPaired(*models.Round)    { b.add("round_paired") }
func (b *recordingBroadcaster) BroadcastResultReported(*models.Match) { b.add("result_reported") }
func (b *recordingBroadcaster) BroadcastRoundClosed(int64, int)       { b.add("round_closed") }
func (b *recordingBroadcaster) BroadcastParticipantUpdated(*models.Participant) {
	b.add("participant_updated")
}
