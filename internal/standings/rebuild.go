package standings

import (
	"sort"

	"github.com/abrezinsky/aesops/internal/models"
)

// Close applies one round's matches and refreshes SoS and ESoS.
func Close(participants []models.Participant, round int, matches []models.Match) ([]models.Participant, error) {
	delta, err := BuildDelta(round, matches)
	if err != nil {
		return nil, err
	}
	updated, err := delta.Apply(participants)
	if err != nil {
		return nil, err
	}
	return Strength(updated), nil
}

// Rebuild recomputes every statistic from scratch using the closed rounds' matches.
func Rebuild(participants []models.Participant, matches []models.Match) ([]models.Participant, error) {
	reset := make([]models.Participant, len(participants))
	for i, p := range participants {
		p.Score = 0
		p.SideBias = 0
		p.Opponents = models.History{}
		p.ReceivedBye = false
		p.SoS = 0
		p.ESoS = 0
		reset[i] = p
	}

	byRound := make(map[int][]models.Match)
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	rounds := make([]int, 0, len(byRound))
	for r := range byRound {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	current := reset
	for _, r := range rounds {
		delta, err := BuildDelta(r, byRound[r])
		if err != nil {
			return nil, err
		}
		if current, err = delta.Apply(current); err != nil {
			return nil, err
		}
	}
	return Strength(current), nil
}
