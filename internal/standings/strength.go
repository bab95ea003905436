package standings

import (
	"math"

	"github.com/abrezinsky/aesops/internal/models"
)

const (
	SoSPlaces  = 3
	ESoSPlaces = 4
)

// Strength recomputes SoS and ESoS for every participant and returns copies.
//
// SoS is the sum of opponents' scores over the sum of their games played,
// with each distinct opponent counted once. ESoS applies the same formula
// to the opponents' unrounded SoS, so it is only computed once every SoS is
// known. Byes never appear in a history and contribute nothing.
func Strength(participants []models.Participant) []models.Participant {
	byID := make(map[int64]models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	sos := make(map[int64]float64, len(participants))
	for _, p := range participants {
		sos[p.ID] = average(p.Opponents, byID, func(opp models.Participant) float64 {
			return float64(opp.Score)
		})
	}

	out := make([]models.Participant, len(participants))
	for i, p := range participants {
		esos := average(p.Opponents, byID, func(opp models.Participant) float64 {
			return sos[opp.ID]
		})
		p = p.Clone()
		p.SoS = Round(sos[p.ID], SoSPlaces)
		p.ESoS = Round(esos, ESoSPlaces)
		out[i] = p
	}
	return out
}

func average(h models.History, byID map[int64]models.Participant, value func(models.Participant) float64) float64 {
	var sum float64
	games := 0
	for _, id := range h.OpponentIDs() {
		opp, ok := byID[id]
		if !ok || opp.IsBye {
			continue
		}
		sum += value(opp)
		games += opp.Opponents.GamesPlayed()
	}
	if games == 0 {
		games = 1
	}
	return sum / float64(games)
}

// Round rounds v half away from zero to the given decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
