package standings

import (
	"fmt"
	"sort"

	"github.com/abrezinsky/aesops/internal/models"
)

// Meeting is a played non-bye table.
type Meeting struct {
	CorpID   int64
	RunnerID int64
}

// Delta is the change one closed round makes to participant records.
type Delta struct {
	Round    int
	Points   map[int64]int
	Bias     map[int64]int
	Meetings []Meeting
	Byes     []int64
}

// BuildDelta collects the effect of a round's matches. Every match must be reported.
func BuildDelta(round int, matches []models.Match) (Delta, error) {
	d := Delta{
		Round:  round,
		Points: make(map[int64]int),
		Bias:   make(map[int64]int),
	}
	for _, m := range matches {
		if !m.Reported() {
			return Delta{}, fmt.Errorf("round %d table %d has no result", round, m.Table)
		}
		corp, runner := m.Scores()
		if m.IsBye {
			d.Points[m.CorpID] += corp
			d.Byes = append(d.Byes, m.CorpID)
			continue
		}
		d.Points[m.CorpID] += corp
		d.Points[m.RunnerID] += runner
		d.Bias[m.CorpID]++
		d.Bias[m.RunnerID]--
		d.Meetings = append(d.Meetings, Meeting{CorpID: m.CorpID, RunnerID: m.RunnerID})
	}
	return d, nil
}

// Apply returns updated copies of participants. The input is left untouched,
// so a failed apply changes nothing.
func (d Delta) Apply(participants []models.Participant) ([]models.Participant, error) {
	out := make([]models.Participant, len(participants))
	index := make(map[int64]int, len(participants))
	for i, p := range participants {
		out[i] = p.Clone()
		if out[i].Opponents == nil {
			out[i].Opponents = models.History{}
		}
		index[p.ID] = i
	}

	for _, id := range d.touched() {
		if _, ok := index[id]; !ok {
			return nil, fmt.Errorf("round %d references unknown participant %d", d.Round, id)
		}
	}

	for id, pts := range d.Points {
		out[index[id]].Score += pts
	}
	for id, bias := range d.Bias {
		out[index[id]].SideBias += bias
	}
	for _, id := range d.Byes {
		out[index[id]].ReceivedBye = true
	}
	for _, mt := range d.Meetings {
		corp := &out[index[mt.CorpID]]
		runner := &out[index[mt.RunnerID]]
		if err := record(corp, mt.RunnerID, models.Corp); err != nil {
			return nil, fmt.Errorf("round %d: %w", d.Round, err)
		}
		if err := record(runner, mt.CorpID, models.Runner); err != nil {
			return nil, fmt.Errorf("round %d: %w", d.Round, err)
		}
	}
	return out, nil
}

// record notes that p played side against opponent. A second meeting must be
// in the other role and exhausts the pairing.
func record(p *models.Participant, opponent int64, side models.Side) error {
	prev, met := p.Opponents[opponent]
	switch {
	case !met:
		p.Opponents[opponent] = side
	case prev == -side:
		p.Opponents[opponent] = models.Both
	default:
		return fmt.Errorf("participant %d cannot play %s against %d again", p.ID, side, opponent)
	}
	return nil
}

func (d Delta) touched() []int64 {
	seen := make(map[int64]struct{}, len(d.Points))
	for id := range d.Points {
		seen[id] = struct{}{}
	}
	for _, mt := range d.Meetings {
		seen[mt.CorpID] = struct{}{}
		seen[mt.RunnerID] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
