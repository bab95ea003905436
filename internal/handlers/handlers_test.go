package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/aesops/internal/auth"
	"github.com/abrezinsky/aesops/internal/handlers"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/metrics"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/pairing"
	"github.com/abrezinsky/aesops/internal/repository"
	"github.com/abrezinsky/aesops/internal/services"
	"github.com/abrezinsky/aesops/internal/testutil"
	"github.com/abrezinsky/aesops/internal/websocket"
	"github.com/abrezinsky/aesops/pkg/nrdb"
)

type testSetup struct {
	repo       *repository.Repository
	handlers   *handlers.Handlers
	router     chi.Router
	authCookie *http.Cookie
	log        *logger.SlogLogger
}

var testIdentities = []models.Identity{
	{Code: "01054", Name: "Haas-Bioroid: Engineering the Future", Side: "corp", Faction: "haas-bioroid"},
	{Code: "01033", Name: "Kate \"Mac\" McCaffrey: Digital Tinker", Side: "runner", Faction: "shaper"},
}

// newTestSetup wires the full handler stack over an in-memory repository
func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	log := logger.Nop()

	rec := metrics.NewPrometheus()
	settings := services.NewSettingsService(log, repo, "http://localhost:8080")
	rounds := services.NewRoundService(log, repo, rec, pairing.FixedTieBreaker(true))
	participants := services.NewParticipantService(log, repo)
	svc := handlers.Services{
		Tournaments:  services.NewTournamentService(log, repo, rounds, pairing.DefaultScoreFactor),
		Participants: participants,
		Rounds:       rounds,
		Standings:    services.NewStandingsService(log, repo, settings),
		Identities:   services.NewIdentityService(log, nrdb.NewMockClient(nrdb.WithIdentities(testIdentities))),
		Settings:     settings,
	}

	hub := websocket.New(log)
	rounds.SetBroadcaster(hub)
	participants.SetBroadcaster(hub)

	h := handlers.New(svc, auth.New("test-password"), hub, rec.Handler(), repo, log)

	token, _ := h.Auth.Login("test-password")
	return &testSetup{
		repo:       repo,
		handlers:   h,
		router:     h.Router(),
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
		log:        log,
	}
}

// do sends a JSON request; authed attaches the admin session cookie
func (s *testSetup) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.AddCookie(s.authCookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// createTournament creates a tournament and registers the given players
func (s *testSetup) createTournament(t *testing.T, names ...string) models.Tournament {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/admin/tournaments", map[string]any{"title": "Store Championship", "date": "2026-03-14"}, true)
	expectStatus(t, rec, http.StatusCreated)
	tour := decode[models.Tournament](t, rec)

	for _, name := range names {
		rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/tournaments/%d/participants", tour.ID), map[string]any{"name": name}, true)
		expectStatus(t, rec, http.StatusCreated)
	}
	return tour
}

// startTournament starts a tournament and returns round one
func (s *testSetup) startTournament(t *testing.T, tid int64) models.Round {
	t.Helper()
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/tournaments/%d/start", tid), nil, true)
	expectStatus(t, rec, http.StatusCreated)
	return decode[models.Round](t, rec)
}

// reportCorpWins reports every non-bye table of a round as a corp win
func (s *testSetup) reportCorpWins(t *testing.T, round models.Round) {
	t.Helper()
	for _, m := range round.Matches {
		if m.IsBye {
			continue
		}
		rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/matches/%d/result", m.ID), map[string]any{"outcome": "corp_win"}, true)
		expectStatus(t, rec, http.StatusOK)
	}
}
