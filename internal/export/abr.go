// Package export renders tournament standings for upload and download.
package export

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/standings"
)

// UploadedFrom identifies this software in exported documents.
const UploadedFrom = "Aesop's Tables"

// Document is the NRTM/ABR results upload format.
type Document struct {
	Name              string    `json:"name"`
	Date              string    `json:"date"`
	CutToTop          int       `json:"cutToTop"`
	PreliminaryRounds int       `json:"preliminaryRounds"`
	Players           []Player  `json:"players"`
	Rounds            [][]Table `json:"rounds"`
	UploadedFrom      string    `json:"uploadedFrom"`
	Links             []Link    `json:"links"`
}

// Player is one ranked participant.
type Player struct {
	ID                         int64  `json:"id"`
	Name                       string `json:"name"`
	Rank                       int    `json:"rank"`
	CorpIdentity               string `json:"corpIdentity"`
	RunnerIdentity             string `json:"runnerIdentity"`
	MatchPoints                int    `json:"matchPoints"`
	StrengthOfSchedule         string `json:"strengthOfSchedule"`
	ExtendedStrengthOfSchedule string `json:"extendedStrengthOfSchedule"`
	SideBalance                int    `json:"sideBalance"`
}

// Table is one match in a round.
type Table struct {
	Table  int  `json:"table"`
	Corp   Seat `json:"corp"`
	Runner Seat `json:"runner"`
	IsBye  bool `json:"isBye"`
}

// Seat is a side of a table. ID is null for the bye.
type Seat struct {
	ID    *int64 `json:"id"`
	Score *int   `json:"score"`
}

// Link is a schema or origin reference.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Build assembles the document from closed rounds only. Unclosed rounds are
// left out so a mid-event export never carries partial results.
func Build(t models.Tournament, participants []models.Participant, rounds []models.Round, selfURL string) Document {
	doc := Document{
		Name:         t.Title,
		Date:         t.Date,
		Players:      make([]Player, 0, len(participants)),
		Rounds:       make([][]Table, 0, len(rounds)),
		UploadedFrom: UploadedFrom,
		Links: []Link{
			{Rel: "schemaderivedfrom", Href: "http://steffens.org/nrtm/nrtm-schema.json"},
		},
	}
	if selfURL != "" {
		doc.Links = append(doc.Links, Link{Rel: "uploadedfrom", Href: selfURL})
	}

	for _, s := range standings.Table(participants) {
		doc.Players = append(doc.Players, Player{
			ID:                         s.ID,
			Name:                       s.Name,
			Rank:                       s.Rank,
			CorpIdentity:               s.CorpIdentity,
			RunnerIdentity:             s.RunnerIdentity,
			MatchPoints:                s.Score,
			StrengthOfSchedule:         strconv.FormatFloat(s.SoS, 'f', standings.SoSPlaces, 64),
			ExtendedStrengthOfSchedule: strconv.FormatFloat(s.ESoS, 'f', standings.ESoSPlaces, 64),
			SideBalance:                s.SideBias,
		})
	}

	for _, rd := range rounds {
		if rd.Status != models.RoundClosed {
			continue
		}
		tables := make([]Table, 0, len(rd.Matches))
		for _, m := range rd.Matches {
			corpID := m.CorpID
			tbl := Table{
				Table: m.Table,
				Corp:  Seat{ID: &corpID, Score: m.CorpScore},
				IsBye: m.IsBye,
			}
			if !m.IsBye {
				runnerID := m.RunnerID
				tbl.Runner = Seat{ID: &runnerID, Score: m.RunnerScore}
			} else {
				tbl.Runner = Seat{Score: m.RunnerScore}
			}
			tables = append(tables, tbl)
		}
		doc.Rounds = append(doc.Rounds, tables)
	}
	doc.PreliminaryRounds = len(doc.Rounds)
	return doc
}

// WriteJSON encodes doc with indentation.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
