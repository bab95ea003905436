package pairing

import (
	"fmt"
	"sort"

	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/standings"
)

// Error reports that no legal pairing covers every participant.
type Error struct {
	Round        int
	Participants int
	Reason       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("pairing round %d of %d participants: %s", e.Round, e.Participants, e.Reason)
}

// Choice is the side assignment and cost of a candidate pairing.
type Choice struct {
	CorpID    int64
	RunnerID  int64
	RoleCost  int64
	ScoreCost float64
	Bye       bool
}

// Engine pairs Swiss rounds by minimum-cost perfect matching.
type Engine struct {
	scoreFactor int64
	tie         TieBreaker
}

// Option configures an Engine.
type Option func(*Engine)

// WithScoreFactor sets the multiplier applied to ScoreCost.
func WithScoreFactor(f int) Option {
	return func(e *Engine) {
		if f > 0 {
			e.scoreFactor = int64(f)
		}
	}
}

// WithTieBreaker sets how equal-cost side assignments are decided.
func WithTieBreaker(t TieBreaker) Option {
	return func(e *Engine) {
		if t != nil {
			e.tie = t
		}
	}
}

// NewEngine returns an engine with the default score factor and a clock-seeded coin.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{scoreFactor: DefaultScoreFactor}
	for _, opt := range opts {
		opt(e)
	}
	if e.tie == nil {
		e.tie = NewRandomTieBreaker(0)
	}
	return e
}

// Choose decides sides for a and b. It returns false when the two may not
// meet: they have played in both roles, or one is the bye and the other has
// already had one.
func (e *Engine) Choose(a, b models.Participant) (Choice, bool) {
	c := Choice{ScoreCost: ScoreCost(a.Score, b.Score)}

	if a.IsBye || b.IsBye {
		player := a
		if a.IsBye {
			player = b
		}
		if player.IsBye || player.ReceivedBye {
			return Choice{}, false
		}
		c.CorpID, c.RunnerID, c.Bye = player.ID, models.ByeID, true
		return c, true
	}

	aCorp := RoleCost(a.SideBias, b.SideBias)
	bCorp := RoleCost(b.SideBias, a.SideBias)

	firstCorp := false
	switch AllowedSide(a, b.ID) {
	case AllowNone:
		return Choice{}, false
	case AllowCorp:
		firstCorp = true
	case AllowRunner:
		firstCorp = false
	default:
		switch {
		case aCorp < bCorp:
			firstCorp = true
		case bCorp < aCorp:
			firstCorp = false
		default:
			firstCorp = e.tie.FirstTakesCorp()
		}
	}

	if firstCorp {
		c.CorpID, c.RunnerID, c.RoleCost = a.ID, b.ID, aCorp
	} else {
		c.CorpID, c.RunnerID, c.RoleCost = b.ID, a.ID, bCorp
	}
	return c, true
}

// cost is the total edge cost in sixths.
func (e *Engine) cost(a, b models.Participant, c Choice) int64 {
	return 6*c.RoleCost + scoreCostSixths(a.Score, b.Score)*e.scoreFactor
}

// Pair produces the matches for a round from the active participants, given
// in repository order. A bye placeholder is added when the count is odd. Bye
// tables come back already scored.
func (e *Engine) Pair(tournamentID int64, round int, active []models.Participant) ([]models.Match, error) {
	field := make([]models.Participant, 0, len(active)+1)
	for _, p := range active {
		if !p.IsBye {
			field = append(field, p)
		}
	}
	if len(field) == 0 {
		return nil, nil
	}
	if len(field)%2 == 1 {
		field = append(field, models.NewBye(tournamentID))
	}
	n := len(field)

	choices := make(map[[2]int]Choice)
	var (
		edges   []Edge
		costs   []int64
		maxCost int64
	)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c, ok := e.Choose(field[i], field[j])
			if !ok {
				continue
			}
			cost := e.cost(field[i], field[j], c)
			maxCost = max(maxCost, cost)
			choices[[2]int{i, j}] = c
			edges = append(edges, Edge{U: i, V: j})
			costs = append(costs, cost)
		}
	}
	// Solver weights must be positive; lower cost means heavier edge.
	for k := range edges {
		edges[k].Weight = maxCost + 1 - costs[k]
	}

	mate := MaxWeightMatching(n, edges, true)
	for v, w := range mate {
		if w < 0 {
			return nil, &Error{
				Round:        round,
				Participants: len(active),
				Reason:       fmt.Sprintf("no legal opponent left for %s", field[v].Name),
			}
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return standings.Less(field[order[x]], field[order[y]])
	})

	matches := make([]models.Match, 0, n/2)
	seated := make([]bool, n)
	for _, v := range order {
		if seated[v] {
			continue
		}
		w := mate[v]
		seated[v], seated[w] = true, true
		c := choices[[2]int{min(v, w), max(v, w)}]

		m := models.Match{
			TournamentID: tournamentID,
			Round:        round,
			Table:        len(matches) + 1,
			CorpID:       c.CorpID,
			RunnerID:     c.RunnerID,
			IsBye:        c.Bye,
		}
		if c.Bye {
			m.CorpScore = models.IntPtr(WinPoints)
			m.RunnerScore = models.IntPtr(0)
		}
		matches = append(matches, m)
	}
	return matches, nil
}
