package pairing

import (
	"math/rand/v2"
	"sync"
	"time"
)

// TieBreaker decides equal-cost side assignments.
type TieBreaker interface {
	// FirstTakesCorp reports whether the first participant of a pair plays Corp.
	FirstTakesCorp() bool
}

// RandomTieBreaker flips a seeded coin. Safe for concurrent use.
type RandomTieBreaker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomTieBreaker returns a coin seeded with seed, or with the clock when seed is 0.
func NewRandomTieBreaker(seed uint64) *RandomTieBreaker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomTieBreaker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomTieBreaker) FirstTakesCorp() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(2) == 1
}

// FixedTieBreaker always gives the same answer.
type FixedTieBreaker bool

func (f FixedTieBreaker) FirstTakesCorp() bool {
	return bool(f)
}
