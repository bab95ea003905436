package services_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/abrezinsky/aesops/internal/errors"
	"github.com/abrezinsky/aesops/internal/repository/mock"
	"github.com/abrezinsky/aesops/internal/services"
	"github.com/abrezinsky/aesops/internal/testutil"
)

func TestStandingsService_RecalculateMatchesIncremental(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tour, rd := f.startWith(t, "A", "B", "C", "D", "E", "F", "G")

	for round := 1; round <= 3; round++ {
		f.reportAll(t, rd)
		if _, err := f.rounds.CloseRound(ctx, tour.ID, round); err != nil {
			t.Fatalf("CloseRound(%d) failed: %v", round, err)
		}
		if round < 3 {
			var err error
			if rd, err = f.rounds.PairRound(ctx, tour.ID, round+1, services.PairOptions{}); err != nil {
				t.Fatalf("PairRound(%d) failed: %v", round+1, err)
			}
		}
	}

	before, err := f.standings.Standings(ctx, tour.ID)
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}
	after, err := f.standings.Recalculate(ctx, tour.ID)
	if err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("row count changed: %d vs %d", len(before), len(after))
	}
	for i := range before {
		b, a := before[i], after[i]
		if b.ID != a.ID || b.Score != a.Score || b.SideBias != a.SideBias || b.SoS != a.SoS || b.ESoS != a.ESoS {
			t.Errorf("rank %d differs after recalculation: %+v vs %+v", i+1, b.Participant, a.Participant)
		}
	}
	for i, row := range after {
		if row.Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, row.Rank)
		}
	}
}

func TestStandingsService_Recalculate_StoreError(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	f := newFixture(t, repo)
	tour, _ := f.startWith(t, "A", "B")

	repo.ListClosedMatchesError = stderrors.New("boom")
	if _, err := f.standings.Recalculate(context.Background(), tour.ID); err == nil {
		t.Error("expected error")
	}
}

func TestStandingsService_Export(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tour, rd := f.startWith(t, "A", "B", "C")
	f.reportAll(t, rd)
	if _, err := f.rounds.CloseRound(ctx, tour.ID, 1); err != nil {
		t.Fatalf("CloseRound failed: %v", err)
	}
	if _, err := f.rounds.PairRound(ctx, tour.ID, 2, services.PairOptions{}); err != nil {
		t.Fatalf("PairRound failed: %v", err)
	}

	doc, err := f.standings.Export(ctx, tour.ID)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if doc.Name != "Test Event" || doc.PreliminaryRounds != 1 {
		t.Errorf("unexpected header %q / %d", doc.Name, doc.PreliminaryRounds)
	}
	if len(doc.Players) != 3 || len(doc.Rounds) != 1 {
		t.Errorf("expected 3 players and 1 closed round, got %d and %d", len(doc.Players), len(doc.Rounds))
	}
	if len(doc.Links) != 1 {
		t.Errorf("expected no self link without base URL, got %d links", len(doc.Links))
	}

	data, err := f.standings.ExportXLSX(ctx, tour.ID)
	if err != nil {
		t.Fatalf("ExportXLSX failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("expected a zip container")
	}

	if _, err := f.standings.Export(ctx, 999); !errors.IsKind(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestStandingsService_QRCode(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tour, err := f.tournaments.CreateTournament(ctx, services.CreateTournament{Title: "QR"})
	if err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}

	if _, err := f.standings.QRCode(ctx, tour.ID); err != services.ErrBaseURLNotConfigured {
		t.Fatalf("expected ErrBaseURLNotConfigured, got %v", err)
	}

	if err := f.settings.SetBaseURL(ctx, "https://pairings.example.org/"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}
	png, err := f.standings.QRCode(ctx, tour.ID)
	if err != nil {
		t.Fatalf("QRCode failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG data")
	}

	doc, err := f.standings.Export(ctx, tour.ID)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(doc.Links) != 2 || !strings.HasSuffix(doc.Links[1].Href, "/t/"+tour.PublicID) {
		t.Errorf("expected public link, got %+v", doc.Links)
	}
}
