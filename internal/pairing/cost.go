package pairing

import "github.com/abrezinsky/aesops/internal/models"

const (
	// WinPoints is awarded for a win and for a bye.
	WinPoints = 3
	// DrawPoints is awarded to each side of a drawn game.
	DrawPoints = 1
	// DefaultScoreFactor weights score distance against side balance.
	DefaultScoreFactor = 3

	// maxRoleExponent caps 8^n so edge weights fit in int64.
	maxRoleExponent = 18
)

// ScoreCost is the triangular cost of pairing a participant on a scores
// against one on b: (d+1)*d/6 where d = a-b. It is sign-sensitive.
func ScoreCost(a, b int) float64 {
	return float64(scoreCostSixths(a, b)) / 6
}

// scoreCostSixths is ScoreCost scaled by 6. The product of two consecutive
// integers is never negative, so neither is the result.
func scoreCostSixths(a, b int) int64 {
	d := int64(a - b)
	return (d + 1) * d
}

// RoleCost is the cost of the participant with corpBias playing Corp against
// the participant with runnerBias. It is 0 when the worst absolute bias does
// not grow, otherwise 8 to the power of the new worst bias.
func RoleCost(corpBias, runnerBias int) int64 {
	initial := max(abs(corpBias), abs(runnerBias))
	post := max(abs(corpBias+1), abs(runnerBias-1))
	if post <= initial {
		return 0
	}
	return pow8(min(post, maxRoleExponent))
}

func pow8(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 8
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Allowance is the set of sides a participant may take against an opponent.
type Allowance int

const (
	AllowEither Allowance = iota
	AllowCorp
	AllowRunner
	AllowNone
)

func (a Allowance) String() string {
	switch a {
	case AllowEither:
		return "either"
	case AllowCorp:
		return "corp"
	case AllowRunner:
		return "runner"
	default:
		return "none"
	}
}

// AllowedSide reports which side p may play against opponentID given their
// shared history. A pair meets at most twice, once in each role.
func AllowedSide(p models.Participant, opponentID int64) Allowance {
	side, met := p.Opponents[opponentID]
	if !met {
		return AllowEither
	}
	switch side {
	case models.Corp:
		return AllowRunner
	case models.Runner:
		return AllowCorp
	default:
		return AllowNone
	}
}
