package pairing_test

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/pairing"
	"github.com/abrezinsky/aesops/internal/standings"
)

func roster(n int) []models.Participant {
	ps := make([]models.Participant, n)
	for i := range ps {
		ps[i] = models.Participant{
			ID:           int64(i + 1),
			TournamentID: 1,
			Name:         fmt.Sprintf("Player %d", i+1),
			Opponents:    models.History{},
			Active:       true,
		}
	}
	return ps
}

func newEngine() *pairing.Engine {
	return pairing.NewEngine(pairing.WithTieBreaker(pairing.FixedTieBreaker(true)))
}

// seatedOnce checks every participant sits at exactly one table.
func seatedOnce(t *testing.T, ps []models.Participant, matches []models.Match) {
	t.Helper()
	seen := make(map[int64]int)
	for _, m := range matches {
		seen[m.CorpID]++
		if !m.IsBye {
			seen[m.RunnerID]++
		}
	}
	for _, p := range ps {
		if seen[p.ID] != 1 {
			t.Errorf("participant %d seated %d times", p.ID, seen[p.ID])
		}
	}
	if len(seen) != len(ps) {
		t.Errorf("expected %d seated participants, got %d", len(ps), len(seen))
	}
}

func mustPair(t *testing.T, e *pairing.Engine, round int, ps []models.Participant) []models.Match {
	t.Helper()
	matches, err := e.Pair(1, round, ps)
	if err != nil {
		t.Fatalf("Pair(round %d) failed: %v", round, err)
	}
	return matches
}

func mustClose(t *testing.T, ps []models.Participant, round int, matches []models.Match) []models.Participant {
	t.Helper()
	closed, err := standings.Close(ps, round, matches)
	if err != nil {
		t.Fatalf("Close(round %d) failed: %v", round, err)
	}
	return closed
}

func expectPairingError(t *testing.T, err error) *pairing.Error {
	t.Helper()
	var perr *pairing.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *pairing.Error, got %v", err)
	}
	return perr
}

func TestPair_NoParticipants(t *testing.T) {
	matches := mustPair(t, newEngine(), 1, nil)
	if len(matches) != 0 {
		t.Errorf("expected no tables, got %d", len(matches))
	}
}

func TestPair_EvenFieldIsPerfect(t *testing.T) {
	ps := roster(8)
	matches := mustPair(t, newEngine(), 1, ps)
	if len(matches) != 4 {
		t.Fatalf("expected 4 tables, got %d", len(matches))
	}
	seatedOnce(t, ps, matches)

	for i, m := range matches {
		if m.Table != i+1 || m.Round != 1 {
			t.Errorf("match %d: table %d round %d", i, m.Table, m.Round)
		}
		if m.IsBye {
			t.Errorf("table %d: unexpected bye", m.Table)
		}
		if m.CorpScore != nil || m.RunnerScore != nil {
			t.Errorf("table %d: expected no scores", m.Table)
		}
	}
}

func TestPair_OddFieldGetsScoredBye(t *testing.T) {
	ps := roster(5)
	matches := mustPair(t, newEngine(), 1, ps)
	if len(matches) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(matches))
	}
	seatedOnce(t, ps, matches)

	byes := 0
	for _, m := range matches {
		if !m.IsBye {
			continue
		}
		byes++
		if m.RunnerID != models.ByeID {
			t.Errorf("expected bye runner %d, got %d", models.ByeID, m.RunnerID)
		}
		if m.CorpScore == nil || m.RunnerScore == nil {
			t.Fatal("expected bye to be scored")
		}
		if *m.CorpScore != pairing.WinPoints || *m.RunnerScore != 0 {
			t.Errorf("expected bye scored %d-0, got %d-%d", pairing.WinPoints, *m.CorpScore, *m.RunnerScore)
		}
	}
	if byes != 1 {
		t.Errorf("expected 1 bye, got %d", byes)
	}
}

func TestPair_ByeGoesToLowestScore(t *testing.T) {
	ps := roster(3)
	ps[0].Score, ps[1].Score, ps[2].Score = 6, 3, 0

	matches := mustPair(t, newEngine(), 3, ps)
	if len(matches) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(matches))
	}
	if matches[0].IsBye || !matches[1].IsBye {
		t.Fatalf("expected the bye at table 2, got %+v", matches)
	}
	if matches[1].CorpID != 3 {
		t.Errorf("expected bye for participant 3, got %d", matches[1].CorpID)
	}
}

func TestPair_ByeSkipsPreviousRecipient(t *testing.T) {
	ps := roster(3)
	ps[2].ReceivedBye = true

	for _, m := range mustPair(t, newEngine(), 2, ps) {
		if m.IsBye && m.CorpID == 3 {
			t.Error("participant 3 received a second bye")
		}
	}
}

func TestPair_AllByesExhausted(t *testing.T) {
	ps := roster(3)
	for i := range ps {
		ps[i].ReceivedBye = true
	}

	_, err := newEngine().Pair(1, 4, ps)
	perr := expectPairingError(t, err)
	if perr.Round != 4 || perr.Participants != 3 {
		t.Errorf("expected round 4 with 3 participants, got round %d with %d", perr.Round, perr.Participants)
	}
}

func TestPair_ExhaustedPairNeverMeets(t *testing.T) {
	ps := roster(2)
	ps[0].Opponents[2] = models.Both
	ps[1].Opponents[1] = models.Both

	_, err := newEngine().Pair(1, 3, ps)
	expectPairingError(t, err)
}

func TestPair_RematchTakesOtherSide(t *testing.T) {
	ps := roster(2)
	ps[0].Opponents[2] = models.Corp
	ps[0].SideBias = 1
	ps[1].Opponents[1] = models.Runner
	ps[1].SideBias = -1

	matches := mustPair(t, newEngine(), 2, ps)
	if len(matches) != 1 {
		t.Fatalf("expected 1 table, got %d", len(matches))
	}
	if matches[0].CorpID != 2 || matches[0].RunnerID != 1 {
		t.Errorf("expected 2 corp against 1, got %d against %d", matches[0].CorpID, matches[0].RunnerID)
	}
}

func TestPair_GroupsByScore(t *testing.T) {
	ps := roster(4)
	ps[0].Score, ps[2].Score = 6, 6

	matches := mustPair(t, newEngine(), 3, ps)
	if len(matches) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(matches))
	}

	seats := func(m models.Match) []int64 {
		ids := []int64{m.CorpID, m.RunnerID}
		slices.Sort(ids)
		return ids
	}
	if got := seats(matches[0]); !slices.Equal(got, []int64{1, 3}) {
		t.Errorf("expected leaders 1 and 3 at table 1, got %v", got)
	}
	if got := seats(matches[1]); !slices.Equal(got, []int64{2, 4}) {
		t.Errorf("expected 2 and 4 at table 2, got %v", got)
	}
}

func TestPair_SideBiasPicksCorp(t *testing.T) {
	ps := roster(2)
	ps[0].SideBias = 1
	ps[1].SideBias = -1

	for _, first := range []bool{true, false} {
		e := pairing.NewEngine(pairing.WithTieBreaker(pairing.FixedTieBreaker(first)))
		matches := mustPair(t, e, 2, ps)
		if matches[0].CorpID != 2 {
			t.Errorf("tie breaker %v: expected runner-heavy participant 2 to corp, got %d", first, matches[0].CorpID)
		}
	}
}

func TestPair_TieBreakerDecidesEqualCost(t *testing.T) {
	ps := roster(2)
	tests := []struct {
		first bool
		corp  int64
	}{
		{true, 1},
		{false, 2},
	}
	for _, tt := range tests {
		e := pairing.NewEngine(pairing.WithTieBreaker(pairing.FixedTieBreaker(tt.first)))
		if m := mustPair(t, e, 1, ps); m[0].CorpID != tt.corp {
			t.Errorf("tie breaker %v: expected corp %d, got %d", tt.first, tt.corp, m[0].CorpID)
		}
	}
}

func TestPair_TablesFollowRank(t *testing.T) {
	ps := roster(6)
	ps[4].Score, ps[5].Score = 9, 9
	ps[0].Score, ps[1].Score = 3, 3
	ps[4].SoS = 2

	matches := mustPair(t, newEngine(), 4, ps)
	for i, id := range []int64{5, 1, 3} {
		if !matches[i].Involves(id) {
			t.Errorf("expected participant %d at table %d, got %+v", id, i+1, matches[i])
		}
	}
}

func TestChoose_ByeEdges(t *testing.T) {
	e := newEngine()
	bye := models.NewBye(1)
	p := roster(1)[0]

	c, ok := e.Choose(p, bye)
	if !ok {
		t.Fatal("expected a bye candidate")
	}
	if !c.Bye || c.CorpID != p.ID || c.RoleCost != 0 {
		t.Errorf("unexpected bye candidate %+v", c)
	}

	p.ReceivedBye = true
	if _, ok := e.Choose(bye, p); ok {
		t.Error("expected no second bye")
	}
}

func TestRoundTrip_ScoresIncreaseByEarnedPoints(t *testing.T) {
	ps := roster(7)
	matches := mustPair(t, newEngine(), 1, ps)

	earned := make(map[int64]int)
	for i := range matches {
		if matches[i].IsBye {
			earned[matches[i].CorpID] = pairing.WinPoints
			continue
		}
		matches[i].CorpScore = models.IntPtr(pairing.DrawPoints)
		matches[i].RunnerScore = models.IntPtr(pairing.DrawPoints)
		earned[matches[i].CorpID] = pairing.DrawPoints
		earned[matches[i].RunnerID] = pairing.DrawPoints
	}

	for i, p := range mustClose(t, ps, 1, matches) {
		if want := ps[i].Score + earned[p.ID]; p.Score != want {
			t.Errorf("participant %d: score %d, want %d", p.ID, p.Score, want)
		}
	}
}

func TestFivePlayerEvent(t *testing.T) {
	ps := roster(5)
	e := newEngine()

	round1 := mustPair(t, e, 1, ps)
	var byeID int64
	for i := range round1 {
		if round1[i].IsBye {
			byeID = round1[i].CorpID
			continue
		}
		round1[i].CorpScore = models.IntPtr(1)
		round1[i].RunnerScore = models.IntPtr(1)
	}
	if byeID == 0 {
		t.Fatal("expected a bye in round 1")
	}

	ps = mustClose(t, ps, 1, round1)
	for _, p := range ps {
		if p.ID == byeID {
			if p.Score != 3 || p.SoS != 0 || len(p.Opponents) != 0 || !p.ReceivedBye || p.SideBias != 0 {
				t.Errorf("unexpected bye recipient state %+v", p)
			}
			continue
		}
		if p.Score != 1 || len(p.Opponents) != 1 || abs(p.SideBias) != 1 {
			t.Errorf("unexpected drawn participant state %+v", p)
		}
	}

	for _, m := range mustPair(t, e, 2, ps) {
		if m.IsBye && m.CorpID == byeID {
			t.Error("bye must rotate")
		}
	}
}

func TestOddRounds_FailOnceEveryoneHadBye(t *testing.T) {
	ps := roster(3)
	e := newEngine()

	for round := 1; round <= 3; round++ {
		matches := mustPair(t, e, round, ps)
		for i := range matches {
			if !matches[i].IsBye {
				matches[i].CorpScore = models.IntPtr(3)
				matches[i].RunnerScore = models.IntPtr(0)
			}
		}
		ps = mustClose(t, ps, round, matches)
	}

	for _, p := range ps {
		if !p.ReceivedBye {
			t.Fatalf("participant %d never received a bye", p.ID)
		}
	}
	_, err := e.Pair(1, 4, ps)
	expectPairingError(t, err)
}

func TestManyRounds_NoThirdMeeting(t *testing.T) {
	ps := roster(6)
	e := pairing.NewEngine(pairing.WithTieBreaker(pairing.NewRandomTieBreaker(42)))
	rng := rand.New(rand.NewPCG(1, 2))

	meetings := make(map[[2]int64][]models.Side)
	paired := 0
	for round := 1; round <= 12; round++ {
		matches, err := e.Pair(1, round, ps)
		if err != nil {
			expectPairingError(t, err)
			break
		}
		paired++
		seatedOnce(t, ps, matches)

		for i := range matches {
			m := &matches[i]
			key := [2]int64{min(m.CorpID, m.RunnerID), max(m.CorpID, m.RunnerID)}
			side := models.Corp
			if m.CorpID != key[0] {
				side = models.Runner
			}
			meetings[key] = append(meetings[key], side)

			switch rng.IntN(3) {
			case 0:
				m.CorpScore, m.RunnerScore = models.IntPtr(3), models.IntPtr(0)
			case 1:
				m.CorpScore, m.RunnerScore = models.IntPtr(0), models.IntPtr(3)
			default:
				m.CorpScore, m.RunnerScore = models.IntPtr(1), models.IntPtr(1)
			}
		}
		ps = mustClose(t, ps, round, matches)
	}

	if paired < 6 {
		t.Errorf("expected at least 6 paired rounds, got %d", paired)
	}
	for key, sides := range meetings {
		if len(sides) > 2 {
			t.Fatalf("pair %v met %d times", key, len(sides))
		}
		if len(sides) == 2 && sides[0] == sides[1] {
			t.Errorf("pair %v repeated sides", key)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
