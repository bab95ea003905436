package testutil

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// Names returns n distinct fake player names, reproducible for a given seed.
func Names(seed uint64, n int) []string {
	faker := gofakeit.New(seed)
	seen := make(map[string]bool, n)
	names := make([]string, 0, n)
	for len(names) < n {
		name := faker.Name()
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// SeedTournament stores a tournament with n fake participants and returns it
// with the participants in ID order.
func SeedTournament(t *testing.T, repo *repository.Repository, n int) (*models.Tournament, []models.Participant) {
	t.Helper()
	ctx := context.Background()

	faker := gofakeit.New(uint64(n))
	tour := &models.Tournament{
		PublicID:    faker.UUID(),
		Title:       faker.Company() + " Store Championship",
		Date:        "2026-01-10",
		ScoreFactor: 3,
	}
	id, err := repo.CreateTournament(ctx, tour)
	if err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}
	tour.ID = id

	for _, name := range Names(uint64(n)+1, n) {
		p := &models.Participant{
			TournamentID: id,
			Name:         name,
			Opponents:    models.History{},
			Active:       true,
		}
		if _, err := repo.CreateParticipant(ctx, p); err != nil {
			t.Fatalf("CreateParticipant failed: %v", err)
		}
	}

	participants, err := repo.ListParticipants(ctx, id)
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	return tour, participants
}
