package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/abrezinsky/aesops/internal/models"
)

func fixture() (models.Tournament, []models.Participant, []models.Round) {
	t := models.Tournament{ID: 1, Title: "Store Champs", Date: "2026-03-14", CurrentRound: 3}
	participants := []models.Participant{
		{ID: 1, Name: "Alice", CorpIdentity: "Azmari EdTech", Score: 3, SideBias: 1, SoS: 1.5, ESoS: 0.75, Active: true},
		{ID: 2, Name: "Bob", RunnerIdentity: "Zahya", Score: 6, SideBias: 0, SoS: 0.5, ESoS: 2, Active: true},
		{ID: 3, Name: "Cara", Score: 3, SideBias: -1, SoS: 3, ESoS: 1.25, Active: true},
	}
	rounds := []models.Round{
		{Number: 1, Status: models.RoundClosed, Matches: []models.Match{
			{Table: 1, CorpID: 2, RunnerID: 1, CorpScore: models.IntPtr(3), RunnerScore: models.IntPtr(0)},
			{Table: 2, CorpID: 3, IsBye: true, CorpScore: models.IntPtr(3), RunnerScore: models.IntPtr(0)},
		}},
		{Number: 2, Status: models.RoundClosed, Matches: []models.Match{
			{Table: 1, CorpID: 1, RunnerID: 3, CorpScore: models.IntPtr(3), RunnerScore: models.IntPtr(0)},
			{Table: 2, CorpID: 2, IsBye: true, CorpScore: models.IntPtr(3), RunnerScore: models.IntPtr(0)},
		}},
		{Number: 3, Status: models.RoundPaired, Matches: []models.Match{
			{Table: 1, CorpID: 3, RunnerID: 2},
		}},
	}
	return t, participants, rounds
}

func TestBuild(t *testing.T) {
	tour, participants, rounds := fixture()

	doc := Build(tour, participants, rounds, "https://example.org/t/abc")

	if doc.Name != "Store Champs" || doc.Date != "2026-03-14" {
		t.Errorf("unexpected name/date %q %q", doc.Name, doc.Date)
	}
	if doc.CutToTop != 0 || doc.PreliminaryRounds != 2 {
		t.Errorf("expected cut 0 and 2 preliminary rounds, got %d and %d", doc.CutToTop, doc.PreliminaryRounds)
	}
	if doc.UploadedFrom != UploadedFrom {
		t.Errorf("expected uploadedFrom %q, got %q", UploadedFrom, doc.UploadedFrom)
	}
	if len(doc.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(doc.Links))
	}
	if doc.Links[1].Rel != "uploadedfrom" {
		t.Errorf("expected uploadedfrom link, got %q", doc.Links[1].Rel)
	}

	if len(doc.Players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(doc.Players))
	}
	if doc.Players[0].Name != "Bob" || doc.Players[0].Rank != 1 {
		t.Errorf("expected Bob ranked first, got %+v", doc.Players[0])
	}
	cara := doc.Players[1]
	if cara.Name != "Cara" || cara.StrengthOfSchedule != "3.000" || cara.ExtendedStrengthOfSchedule != "1.2500" || cara.SideBalance != -1 {
		t.Errorf("unexpected second player %+v", cara)
	}

	if len(doc.Rounds) != 2 {
		t.Fatalf("expected 2 closed rounds, got %d", len(doc.Rounds))
	}
	bye := doc.Rounds[0][1]
	if !bye.IsBye || bye.Runner.ID != nil {
		t.Errorf("expected a bye with no runner, got %+v", bye)
	}
	if bye.Corp.ID == nil || *bye.Corp.ID != 3 {
		t.Errorf("expected bye for player 3, got %v", bye.Corp.ID)
	}
	if id := doc.Rounds[0][0].Runner.ID; id == nil || *id != 1 {
		t.Errorf("expected runner 1 at round 1 table 1, got %v", id)
	}
}

func TestBuild_NoSelfLink(t *testing.T) {
	tour, participants, rounds := fixture()
	if doc := Build(tour, participants, rounds, ""); len(doc.Links) != 1 {
		t.Errorf("expected 1 link, got %d", len(doc.Links))
	}
}

func TestWriteJSON(t *testing.T) {
	tour, participants, rounds := fixture()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Build(tour, participants, rounds, "")); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"preliminaryRounds", "uploadedFrom"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q", key)
		}
	}

	roundsRaw := raw["rounds"].([]any)
	byeTable := roundsRaw[0].([]any)[1].(map[string]any)
	runner := byeTable["runner"].(map[string]any)
	if runner["id"] != nil {
		t.Errorf("expected null bye runner id, got %v", runner["id"])
	}
}

func TestXLSX(t *testing.T) {
	tour, participants, rounds := fixture()
	data, err := XLSX(Build(tour, participants, rounds, ""))
	if err != nil {
		t.Fatalf("XLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{"Standings", "Round 1", "Round 2"}, f.GetSheetList()); diff != "" {
		t.Errorf("sheet list mismatch (-want +got):\n%s", diff)
	}

	cells := []struct {
		sheet, axis, want string
	}{
		{"Standings", "B2", "Bob"},
		{"Round 1", "D3", "Bye"},
		{"Round 2", "B2", "Alice"},
	}
	for _, c := range cells {
		got, err := f.GetCellValue(c.sheet, c.axis)
		if err != nil {
			t.Fatalf("GetCellValue(%s, %s) failed: %v", c.sheet, c.axis, err)
		}
		if got != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.axis, got, c.want)
		}
	}
}
