package standings

import (
	"sort"

	"github.com/abrezinsky/aesops/internal/models"
)

// Less reports whether a ranks above b: score, then SoS, then ESoS, all
// descending. Participants equal on all three are not ordered.
func Less(a, b models.Participant) bool {
	if a.IsBye != b.IsBye {
		return b.IsBye
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.SoS != b.SoS {
		return a.SoS > b.SoS
	}
	return a.ESoS > b.ESoS
}

// Rank returns a copy of participants in standings order. Full ties keep
// their input order.
func Rank(participants []models.Participant) []models.Participant {
	ranked := make([]models.Participant, len(participants))
	copy(ranked, participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Less(ranked[i], ranked[j])
	})
	return ranked
}

// Standing is a participant with its position in the standings.
type Standing struct {
	Rank int `json:"rank"`
	models.Participant
}

// Table ranks participants and numbers them from 1. Bye placeholders are omitted.
func Table(participants []models.Participant) []Standing {
	ranked := Rank(participants)
	out := make([]Standing, 0, len(ranked))
	for _, p := range ranked {
		if p.IsBye {
			continue
		}
		out = append(out, Standing{Rank: len(out) + 1, Participant: p})
	}
	return out
}

// Sides tallies non-bye results by the winning side.
func Sides(matches []models.Match) models.SideStats {
	var stats models.SideStats
	for _, m := range matches {
		if m.IsBye {
			continue
		}
		if !m.Reported() {
			stats.Pending++
			continue
		}
		corp, runner := m.Scores()
		switch {
		case corp > runner:
			stats.CorpWins++
		case runner > corp:
			stats.RunnerWins++
		default:
			stats.Draws++
		}
	}
	return stats
}
