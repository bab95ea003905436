package models

import (
	"sort"
	"time"
)

// Side is the role a participant plays in a match.
// In a History it also encodes the exhausted state (Both).
type Side int

const (
	Runner Side = -1
	Both   Side = 0
	Corp   Side = 1
)

func (s Side) String() string {
	switch s {
	case Corp:
		return "corp"
	case Runner:
		return "runner"
	default:
		return "both"
	}
}

// ByeID is the participant ID used for the synthetic bye placeholder.
// Real participants always have positive IDs.
const ByeID int64 = 0

// History maps opponent ID to the side this participant has played against them.
// Corp or Runner after one meeting, Both after two.
type History map[int64]Side

// Clone returns an independent copy.
func (h History) Clone() History {
	out := make(History, len(h))
	for id, side := range h {
		out[id] = side
	}
	return out
}

// GamesPlayed counts meetings recorded in the history.
func (h History) GamesPlayed() int {
	n := 0
	for _, side := range h {
		if side == Both {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// OpponentIDs returns the opponent IDs in ascending order.
func (h History) OpponentIDs() []int64 {
	ids := make([]int64, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Tournament is a Swiss event.
type Tournament struct {
	ID           int64     `json:"id"`
	PublicID     string    `json:"public_id"`
	Title        string    `json:"title"`
	Date         string    `json:"date"`
	CurrentRound int       `json:"current_round"`
	ScoreFactor  int       `json:"score_factor"`
	CreatedAt    time.Time `json:"created_at"`
}

// Started reports whether registration has closed.
func (t Tournament) Started() bool {
	return t.CurrentRound > 0
}

// Participant is a registered player and their running statistics.
type Participant struct {
	ID             int64   `json:"id"`
	TournamentID   int64   `json:"tournament_id"`
	Name           string  `json:"name"`
	CorpIdentity   string  `json:"corp_identity,omitempty"`
	RunnerIdentity string  `json:"runner_identity,omitempty"`
	Score          int     `json:"score"`
	SideBias       int     `json:"side_bias"`
	Opponents      History `json:"opponents"`
	SoS            float64 `json:"sos"`
	ESoS           float64 `json:"esos"`
	ReceivedBye    bool    `json:"received_bye"`
	Active         bool    `json:"active"`
	IsBye          bool    `json:"-"`
}

// Clone returns a copy whose opponent history can be mutated independently.
func (p Participant) Clone() Participant {
	p.Opponents = p.Opponents.Clone()
	return p
}

// NewBye returns the placeholder that pads an odd field.
// Its score sits below every real participant so the bye goes to the bottom.
func NewBye(tournamentID int64) Participant {
	return Participant{
		ID:           ByeID,
		TournamentID: tournamentID,
		Name:         "Bye",
		Score:        -1,
		Opponents:    History{},
		IsBye:        true,
	}
}

// Match is a table in a round. RunnerID is ByeID on bye tables.
type Match struct {
	ID           int64  `json:"id"`
	TournamentID int64  `json:"tournament_id"`
	Round        int    `json:"round"`
	Table        int    `json:"table"`
	CorpID       int64  `json:"corp_id"`
	RunnerID     int64  `json:"runner_id"`
	CorpScore    *int   `json:"corp_score"`
	RunnerScore  *int   `json:"runner_score"`
	IsBye        bool   `json:"is_bye"`
	CorpName     string `json:"corp_name,omitempty"`
	RunnerName   string `json:"runner_name,omitempty"`
}

// Reported reports whether both scores are present.
func (m Match) Reported() bool {
	return m.CorpScore != nil && m.RunnerScore != nil
}

// Involves reports whether participant id sits at this table.
func (m Match) Involves(id int64) bool {
	return m.CorpID == id || (!m.IsBye && m.RunnerID == id)
}

// Scores returns the reported scores, zero when unreported.
func (m Match) Scores() (corp, runner int) {
	if m.CorpScore != nil {
		corp = *m.CorpScore
	}
	if m.RunnerScore != nil {
		runner = *m.RunnerScore
	}
	return corp, runner
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// RoundStatus is the lifecycle state of a round.
type RoundStatus string

const (
	RoundUnpaired   RoundStatus = "unpaired"
	RoundPaired     RoundStatus = "paired"
	RoundInProgress RoundStatus = "in_progress"
	RoundReported   RoundStatus = "reported"
	RoundClosed     RoundStatus = "closed"
)

// Round is a stored round with its tables.
type Round struct {
	TournamentID int64       `json:"tournament_id"`
	Number       int         `json:"number"`
	Status       RoundStatus `json:"status"`
	PairedAt     time.Time   `json:"paired_at"`
	ClosedAt     *time.Time  `json:"closed_at,omitempty"`
	Matches      []Match     `json:"matches,omitempty"`
}

// DeriveRoundStatus refines a stored status using the reported results.
// A paired round with some non-bye results is in progress, and one with
// every table reported is ready to close.
func DeriveRoundStatus(stored RoundStatus, matches []Match) RoundStatus {
	if stored != RoundPaired {
		return stored
	}
	reported, played := 0, 0
	for _, m := range matches {
		if m.IsBye {
			continue
		}
		played++
		if m.Reported() {
			reported++
		}
	}
	switch {
	case played > 0 && reported == played:
		return RoundReported
	case reported > 0:
		return RoundInProgress
	case played == 0 && len(matches) > 0:
		return RoundReported
	default:
		return RoundPaired
	}
}

// Identity is a card identity a participant registers with.
type Identity struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Side    string `json:"side"`
	Faction string `json:"faction"`
}

// SideStats counts non-bye results by winning side.
type SideStats struct {
	CorpWins   int `json:"corp_wins"`
	RunnerWins int `json:"runner_wins"`
	Draws      int `json:"draws"`
	Pending    int `json:"pending"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
