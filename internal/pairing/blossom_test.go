package pairing_test

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abrezinsky/aesops/internal/pairing"
)

type graph struct {
	n     int
	edges []pairing.Edge
}

// brute returns the best (cardinality, weight) reachable by exhaustive search.
// Without maxCard, cardinality is ignored.
func brute(g graph, maxCard bool) (int, int64) {
	used := make([]bool, g.n)
	adj := make([][]pairing.Edge, g.n)
	for _, e := range g.edges {
		adj[e.U] = append(adj[e.U], e)
		adj[e.V] = append(adj[e.V], e)
	}

	better := func(c1 int, w1 int64, c2 int, w2 int64) bool {
		if maxCard && c1 != c2 {
			return c1 > c2
		}
		return w1 > w2
	}

	var search func(v int) (int, int64)
	search = func(v int) (int, int64) {
		for v < g.n && used[v] {
			v++
		}
		if v >= g.n {
			return 0, 0
		}
		used[v] = true
		bestC, bestW := search(v + 1)
		for _, e := range adj[v] {
			u := e.U
			if u == v {
				u = e.V
			}
			if used[u] {
				continue
			}
			used[u] = true
			c, w := search(v + 1)
			c, w = c+1, w+e.Weight
			if better(c, w, bestC, bestW) {
				bestC, bestW = c, w
			}
			used[u] = false
		}
		used[v] = false
		return bestC, bestW
	}
	return search(0)
}

// measure validates mate and returns its cardinality and weight.
func measure(t *testing.T, g graph, mate []int) (int, int64) {
	t.Helper()
	if len(mate) != g.n {
		t.Fatalf("expected %d mates, got %d", g.n, len(mate))
	}

	weight := make(map[[2]int]int64)
	for _, e := range g.edges {
		u, v := min(e.U, e.V), max(e.U, e.V)
		if w, ok := weight[[2]int{u, v}]; !ok || e.Weight > w {
			weight[[2]int{u, v}] = e.Weight
		}
	}

	card := 0
	var total int64
	for v, w := range mate {
		if w < 0 {
			continue
		}
		if mate[w] != v {
			t.Fatalf("mate is not symmetric at %d", v)
		}
		if v < w {
			ew, ok := weight[[2]int{v, w}]
			if !ok {
				t.Fatalf("matched %d-%d without an edge", v, w)
			}
			card++
			total += ew
		}
	}
	return card, total
}

func edges(triples ...[3]int) []pairing.Edge {
	out := make([]pairing.Edge, len(triples))
	for i, tr := range triples {
		out[i] = pairing.Edge{U: tr[0], V: tr[1], Weight: int64(tr[2])}
	}
	return out
}

func TestMaxWeightMatching_Empty(t *testing.T) {
	if got := pairing.MaxWeightMatching(0, nil, true); len(got) != 0 {
		t.Errorf("expected no mates, got %v", got)
	}
	if diff := cmp.Diff([]int{-1, -1, -1}, pairing.MaxWeightMatching(3, nil, true)); diff != "" {
		t.Errorf("edgeless graph mismatch (-want +got):\n%s", diff)
	}
}

func TestMaxWeightMatching_Small(t *testing.T) {
	path := edges([3]int{1, 2, 5}, [3]int{2, 3, 11}, [3]int{3, 4, 5})
	tests := []struct {
		name    string
		n       int
		edges   []pairing.Edge
		maxCard bool
		want    []int
	}{
		{"single edge", 2, edges([3]int{0, 1, 1}), false, []int{1, 0}},
		{"heavier edge", 4, edges([3]int{1, 2, 10}, [3]int{2, 3, 11}), false, []int{-1, -1, 3, 2}},
		{"path by weight", 5, path, false, []int{-1, -1, 3, 2, -1}},
		{"path by cardinality", 5, path, true, []int{-1, 2, 1, 4, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pairing.MaxWeightMatching(tt.n, tt.edges, tt.maxCard)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMaxWeightMatching_Blossoms(t *testing.T) {
	cases := map[string]graph{
		"s-blossom": {5, edges([3]int{1, 2, 8}, [3]int{1, 3, 9}, [3]int{2, 3, 10}, [3]int{3, 4, 7})},
		"s-blossom augment": {7, edges([3]int{1, 2, 8}, [3]int{1, 3, 9}, [3]int{2, 3, 10}, [3]int{3, 4, 7},
			[3]int{1, 6, 5}, [3]int{4, 5, 6})},
		"t-blossom": {7, edges([3]int{1, 2, 9}, [3]int{1, 3, 8}, [3]int{2, 3, 10}, [3]int{1, 4, 5},
			[3]int{4, 5, 4}, [3]int{1, 6, 3})},
		"nested s-blossom": {7, edges([3]int{1, 2, 9}, [3]int{1, 3, 9}, [3]int{2, 3, 10}, [3]int{2, 4, 8},
			[3]int{3, 5, 8}, [3]int{4, 5, 10}, [3]int{5, 6, 6})},
		"relabel nested": {9, edges([3]int{1, 2, 10}, [3]int{1, 7, 10}, [3]int{2, 3, 12}, [3]int{3, 4, 20},
			[3]int{3, 5, 20}, [3]int{4, 5, 25}, [3]int{5, 6, 10}, [3]int{6, 7, 10}, [3]int{7, 8, 8})},
		"nested expand": {9, edges([3]int{1, 2, 8}, [3]int{1, 3, 8}, [3]int{2, 3, 10}, [3]int{2, 4, 12},
			[3]int{3, 5, 12}, [3]int{4, 5, 14}, [3]int{4, 6, 12}, [3]int{5, 7, 12}, [3]int{6, 7, 14}, [3]int{7, 8, 12})},
		"s-t expand": {9, edges([3]int{1, 2, 23}, [3]int{1, 5, 22}, [3]int{1, 6, 15}, [3]int{2, 3, 25},
			[3]int{3, 4, 22}, [3]int{4, 5, 25}, [3]int{4, 8, 14}, [3]int{5, 7, 13})},
		"nasty t expand": {11, edges([3]int{1, 2, 45}, [3]int{1, 5, 45}, [3]int{2, 3, 50}, [3]int{3, 4, 45},
			[3]int{4, 5, 50}, [3]int{1, 6, 30}, [3]int{3, 9, 35}, [3]int{4, 8, 35}, [3]int{5, 7, 26}, [3]int{9, 10, 5})},
		"nested nasty expand": {13, edges([3]int{1, 2, 45}, [3]int{1, 7, 45}, [3]int{2, 3, 50}, [3]int{3, 4, 45},
			[3]int{4, 5, 95}, [3]int{4, 6, 94}, [3]int{5, 6, 94}, [3]int{6, 7, 50}, [3]int{1, 8, 30},
			[3]int{3, 11, 35}, [3]int{5, 9, 36}, [3]int{7, 10, 26}, [3]int{11, 12, 5})},
		"nested relabel expand": {11, edges([3]int{1, 2, 40}, [3]int{1, 3, 40}, [3]int{2, 3, 60}, [3]int{2, 4, 55},
			[3]int{3, 5, 55}, [3]int{4, 5, 50}, [3]int{1, 8, 15}, [3]int{5, 7, 30}, [3]int{7, 6, 10},
			[3]int{8, 10, 10}, [3]int{4, 9, 30})},
	}

	for name, g := range cases {
		for _, maxCard := range []bool{false, true} {
			mate := pairing.MaxWeightMatching(g.n, g.edges, maxCard)
			card, weight := measure(t, g, mate)
			wantCard, wantWeight := brute(g, maxCard)
			if weight != wantWeight {
				t.Errorf("%s (maxCard=%v): weight %d, want %d", name, maxCard, weight, wantWeight)
			}
			if maxCard && card != wantCard {
				t.Errorf("%s: cardinality %d, want %d", name, card, wantCard)
			}
		}
	}
}

func TestMaxWeightMatching_AgreesWithExhaustiveSearch(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 300; iter++ {
		n := 1 + rng.IntN(10)
		var g graph
		g.n = n
		density := rng.Float64()
		for u := 0; u < n; u++ {
			for v := u + 1; v < n; v++ {
				if rng.Float64() < density {
					g.edges = append(g.edges, pairing.Edge{U: u, V: v, Weight: int64(1 + rng.IntN(20))})
				}
			}
		}

		for _, maxCard := range []bool{false, true} {
			mate := pairing.MaxWeightMatching(g.n, g.edges, maxCard)
			card, weight := measure(t, g, mate)
			wantCard, wantWeight := brute(g, maxCard)
			if maxCard && card != wantCard {
				t.Fatalf("iteration %d: cardinality %d, want %d", iter, card, wantCard)
			}
			if weight != wantWeight {
				t.Fatalf("iteration %d (maxCard=%v): weight %d, want %d", iter, maxCard, weight, wantWeight)
			}
		}
	}
}
