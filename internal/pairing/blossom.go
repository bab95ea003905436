package pairing

// Edge is an undirected weighted edge between vertices U and V.
type Edge struct {
	U, V   int
	Weight int64
}

// MaxWeightMatching computes a maximum-weight matching of the general graph
// on vertices 0..n-1 using Edmonds' blossom algorithm with primal-dual
// updates, in O(n³). With maxCardinality set, it returns the heaviest among
// the matchings of maximum cardinality.
//
// The result maps each vertex to its mate, or -1 when unmatched.
// Weights are integers; duals are kept doubled so every step stays integral.
func MaxWeightMatching(n int, edges []Edge, maxCardinality bool) []int {
	mate := make([]int, n)
	for i := range mate {
		mate[i] = -1
	}
	if n == 0 || len(edges) == 0 {
		return mate
	}
	m := newMatcher(n, edges, maxCardinality)
	m.solve()
	for v := 0; v < n; v++ {
		if m.mate[v] >= 0 {
			mate[v] = m.endpoint[m.mate[v]]
		}
	}
	return mate
}

// matcher holds the working state. Vertices are 0..n-1, blossoms n..2n-1.
// Edge k has endpoints 2k and 2k+1; endpoint[p] is the vertex at endpoint p
// and p^1 is the opposite end.
type matcher struct {
	n        int
	edges    []Edge
	maxCard  bool
	endpoint []int
	neighb   [][]int

	mate        []int
	label       []int
	labelEnd    []int
	inBlossom   []int
	parent      []int
	childs      [][]int
	base        []int
	endps       [][]int
	bestEdge    []int
	blossomBest [][]int
	unused      []int
	dual        []int64
	allowEdge   []bool
	queue       []int
}

func newMatcher(n int, edges []Edge, maxCard bool) *matcher {
	m := &matcher{n: n, edges: edges, maxCard: maxCard}

	var maxWeight int64
	for _, e := range edges {
		if e.Weight > maxWeight {
			maxWeight = e.Weight
		}
	}

	m.endpoint = make([]int, 2*len(edges))
	m.neighb = make([][]int, n)
	for k, e := range edges {
		m.endpoint[2*k] = e.U
		m.endpoint[2*k+1] = e.V
		m.neighb[e.U] = append(m.neighb[e.U], 2*k+1)
		m.neighb[e.V] = append(m.neighb[e.V], 2*k)
	}

	m.mate = fill(n, -1)
	m.label = make([]int, 2*n)
	m.labelEnd = fill(2*n, -1)
	m.inBlossom = make([]int, n)
	for v := range m.inBlossom {
		m.inBlossom[v] = v
	}
	m.parent = fill(2*n, -1)
	m.childs = make([][]int, 2*n)
	m.base = fill(2*n, -1)
	for v := 0; v < n; v++ {
		m.base[v] = v
	}
	m.endps = make([][]int, 2*n)
	m.bestEdge = fill(2*n, -1)
	m.blossomBest = make([][]int, 2*n)
	for b := 2*n - 1; b >= n; b-- {
		m.unused = append(m.unused, b)
	}
	m.dual = make([]int64, 2*n)
	for v := 0; v < n; v++ {
		m.dual[v] = maxWeight
	}
	m.allowEdge = make([]bool, len(edges))
	return m
}

func fill(n, v int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// wrap emulates indexing with negative offsets from the end.
func wrap(i, length int) int {
	return ((i % length) + length) % length
}

func (m *matcher) slack(k int) int64 {
	e := m.edges[k]
	return m.dual[e.U] + m.dual[e.V] - 2*e.Weight
}

func (m *matcher) leaves(b int) []int {
	if b < m.n {
		return []int{b}
	}
	var out []int
	for _, t := range m.childs[b] {
		if t < m.n {
			out = append(out, t)
		} else {
			out = append(out, m.leaves(t)...)
		}
	}
	return out
}

// assignLabel labels the top-level blossom containing w with t (1 = S, 2 = T)
// reached through endpoint p.
func (m *matcher) assignLabel(w, t, p int) {
	b := m.inBlossom[w]
	m.label[w], m.label[b] = t, t
	m.labelEnd[w], m.labelEnd[b] = p, p
	m.bestEdge[w], m.bestEdge[b] = -1, -1
	if t == 1 {
		m.queue = append(m.queue, m.leaves(b)...)
		return
	}
	base := m.base[b]
	m.assignLabel(m.endpoint[m.mate[base]], 1, m.mate[base]^1)
}

// scanBlossom traces back from v and w to find a common base.
// It returns the base of a new blossom, or -1 if an augmenting path exists.
func (m *matcher) scanBlossom(v, w int) int {
	var path []int
	base := -1
	for v != -1 || w != -1 {
		b := m.inBlossom[v]
		if m.label[b]&4 != 0 {
			base = m.base[b]
			break
		}
		path = append(path, b)
		m.label[b] = 5
		if m.labelEnd[b] == -1 {
			v = -1
		} else {
			v = m.endpoint[m.labelEnd[b]]
			b = m.inBlossom[v]
			v = m.endpoint[m.labelEnd[b]]
		}
		if w != -1 {
			v, w = w, v
		}
	}
	for _, b := range path {
		m.label[b] = 1
	}
	return base
}

// addBlossom builds a new blossom with the given base, closed by edge k.
func (m *matcher) addBlossom(base, k int) {
	v, w := m.edges[k].U, m.edges[k].V
	bb := m.inBlossom[base]
	bv := m.inBlossom[v]
	bw := m.inBlossom[w]

	b := m.unused[len(m.unused)-1]
	m.unused = m.unused[:len(m.unused)-1]
	m.base[b] = base
	m.parent[b] = -1
	m.parent[bb] = b

	var path, endps []int
	for bv != bb {
		m.parent[bv] = b
		path = append(path, bv)
		endps = append(endps, m.labelEnd[bv])
		v = m.endpoint[m.labelEnd[bv]]
		bv = m.inBlossom[v]
	}
	path = append(path, bb)
	reverse(path)
	reverse(endps)
	endps = append(endps, 2*k)
	for bw != bb {
		m.parent[bw] = b
		path = append(path, bw)
		endps = append(endps, m.labelEnd[bw]^1)
		w = m.endpoint[m.labelEnd[bw]]
		bw = m.inBlossom[w]
	}
	m.childs[b] = path
	m.endps[b] = endps

	m.label[b] = 1
	m.labelEnd[b] = m.labelEnd[bb]
	m.dual[b] = 0
	for _, leaf := range m.leaves(b) {
		if m.label[m.inBlossom[leaf]] == 2 {
			m.queue = append(m.queue, leaf)
		}
		m.inBlossom[leaf] = b
	}

	bestTo := fill(2*m.n, -1)
	for _, sub := range path {
		var lists [][]int
		if m.blossomBest[sub] == nil {
			for _, leaf := range m.leaves(sub) {
				ks := make([]int, len(m.neighb[leaf]))
				for i, p := range m.neighb[leaf] {
					ks[i] = p / 2
				}
				lists = append(lists, ks)
			}
		} else {
			lists = [][]int{m.blossomBest[sub]}
		}
		for _, ks := range lists {
			for _, kk := range ks {
				j := m.edges[kk].V
				if m.inBlossom[j] == b {
					j = m.edges[kk].U
				}
				bj := m.inBlossom[j]
				if bj != b && m.label[bj] == 1 &&
					(bestTo[bj] == -1 || m.slack(kk) < m.slack(bestTo[bj])) {
					bestTo[bj] = kk
				}
			}
		}
		m.blossomBest[sub] = nil
		m.bestEdge[sub] = -1
	}

	best := []int{}
	for _, kk := range bestTo {
		if kk != -1 {
			best = append(best, kk)
		}
	}
	m.blossomBest[b] = best
	m.bestEdge[b] = -1
	for _, kk := range best {
		if m.bestEdge[b] == -1 || m.slack(kk) < m.slack(m.bestEdge[b]) {
			m.bestEdge[b] = kk
		}
	}
}

// expandBlossom dissolves blossom b. At the end of a stage, zero-dual
// sub-blossoms are expanded recursively.
func (m *matcher) expandBlossom(b int, endStage bool) {
	for _, s := range m.childs[b] {
		m.parent[s] = -1
		switch {
		case s < m.n:
			m.inBlossom[s] = s
		case endStage && m.dual[s] == 0:
			m.expandBlossom(s, endStage)
		default:
			for _, leaf := range m.leaves(s) {
				m.inBlossom[leaf] = s
			}
		}
	}

	if !endStage && m.label[b] == 2 {
		childs := m.childs[b]
		endps := m.endps[b]
		size := len(childs)

		entry := m.inBlossom[m.endpoint[m.labelEnd[b]^1]]
		j := indexOf(childs, entry)
		var step, trick int
		if j&1 != 0 {
			j -= size
			step, trick = 1, 0
		} else {
			step, trick = -1, 1
		}

		p := m.labelEnd[b]
		for j != 0 {
			m.label[m.endpoint[p^1]] = 0
			m.label[m.endpoint[endps[wrap(j-trick, size)]^trick^1]] = 0
			m.assignLabel(m.endpoint[p^1], 2, p)
			m.allowEdge[endps[wrap(j-trick, size)]/2] = true
			j += step
			p = endps[wrap(j-trick, size)] ^ trick
			m.allowEdge[p/2] = true
			j += step
		}

		bv := childs[wrap(j, size)]
		m.label[m.endpoint[p^1]], m.label[bv] = 2, 2
		m.labelEnd[m.endpoint[p^1]], m.labelEnd[bv] = p, p
		m.bestEdge[bv] = -1
		j += step
		for childs[wrap(j, size)] != entry {
			bv = childs[wrap(j, size)]
			if m.label[bv] == 1 {
				j += step
				continue
			}
			v := -1
			for _, leaf := range m.leaves(bv) {
				v = leaf
				if m.label[leaf] != 0 {
					break
				}
			}
			if v >= 0 && m.label[v] != 0 {
				m.label[v] = 0
				m.label[m.endpoint[m.mate[m.base[bv]]]] = 0
				m.assignLabel(v, 2, m.labelEnd[v])
			}
			j += step
		}
	}

	m.label[b], m.labelEnd[b] = -1, -1
	m.childs[b], m.endps[b] = nil, nil
	m.base[b] = -1
	m.blossomBest[b] = nil
	m.bestEdge[b] = -1
	m.unused = append(m.unused, b)
}

// augmentBlossom swaps matched and unmatched edges along the even path
// from vertex v to the base of blossom b, and rotates b so v becomes its base.
func (m *matcher) augmentBlossom(b, v int) {
	t := v
	for m.parent[t] != b {
		t = m.parent[t]
	}
	if t >= m.n {
		m.augmentBlossom(t, v)
	}

	childs := m.childs[b]
	endps := m.endps[b]
	size := len(childs)
	i := indexOf(childs, t)
	j := i
	var step, trick int
	if i&1 != 0 {
		j -= size
		step, trick = 1, 0
	} else {
		step, trick = -1, 1
	}

	for j != 0 {
		j += step
		t = childs[wrap(j, size)]
		p := endps[wrap(j-trick, size)] ^ trick
		if t >= m.n {
			m.augmentBlossom(t, m.endpoint[p])
		}
		j += step
		t = childs[wrap(j, size)]
		if t >= m.n {
			m.augmentBlossom(t, m.endpoint[p^1])
		}
		m.mate[m.endpoint[p]] = p ^ 1
		m.mate[m.endpoint[p^1]] = p
	}

	m.childs[b] = append(append([]int{}, childs[i:]...), childs[:i]...)
	m.endps[b] = append(append([]int{}, endps[i:]...), endps[:i]...)
	m.base[b] = m.base[m.childs[b][0]]
}

// augmentMatching flips the augmenting path through edge k.
func (m *matcher) augmentMatching(k int) {
	v, w := m.edges[k].U, m.edges[k].V
	for _, start := range [2][2]int{{v, 2*k + 1}, {w, 2 * k}} {
		s, p := start[0], start[1]
		for {
			bs := m.inBlossom[s]
			if bs >= m.n {
				m.augmentBlossom(bs, s)
			}
			m.mate[s] = p
			if m.labelEnd[bs] == -1 {
				break
			}
			t := m.endpoint[m.labelEnd[bs]]
			bt := m.inBlossom[t]
			s = m.endpoint[m.labelEnd[bt]]
			j := m.endpoint[m.labelEnd[bt]^1]
			if bt >= m.n {
				m.augmentBlossom(bt, j)
			}
			m.mate[j] = m.labelEnd[bt]
			p = m.labelEnd[bt] ^ 1
		}
	}
}

func (m *matcher) solve() {
	n := m.n
	for stage := 0; stage < n; stage++ {
		for i := range m.label {
			m.label[i] = 0
			m.bestEdge[i] = -1
		}
		for b := n; b < 2*n; b++ {
			m.blossomBest[b] = nil
		}
		for k := range m.allowEdge {
			m.allowEdge[k] = false
		}
		m.queue = m.queue[:0]

		for v := 0; v < n; v++ {
			if m.mate[v] == -1 && m.label[m.inBlossom[v]] == 0 {
				m.assignLabel(v, 1, -1)
			}
		}

		augmented := false
		for {
			for len(m.queue) > 0 && !augmented {
				v := m.queue[len(m.queue)-1]
				m.queue = m.queue[:len(m.queue)-1]

				for _, p := range m.neighb[v] {
					k := p / 2
					w := m.endpoint[p]
					if m.inBlossom[v] == m.inBlossom[w] {
						continue
					}
					var kslack int64
					if !m.allowEdge[k] {
						kslack = m.slack(k)
						if kslack <= 0 {
							m.allowEdge[k] = true
						}
					}
					switch {
					case m.allowEdge[k]:
						switch {
						case m.label[m.inBlossom[w]] == 0:
							m.assignLabel(w, 2, p^1)
						case m.label[m.inBlossom[w]] == 1:
							if base := m.scanBlossom(v, w); base >= 0 {
								m.addBlossom(base, k)
							} else {
								m.augmentMatching(k)
								augmented = true
							}
						case m.label[w] == 0:
							m.label[w] = 2
							m.labelEnd[w] = p ^ 1
						}
					case m.label[m.inBlossom[w]] == 1:
						b := m.inBlossom[v]
						if m.bestEdge[b] == -1 || kslack < m.slack(m.bestEdge[b]) {
							m.bestEdge[b] = k
						}
					case m.label[w] == 0:
						if m.bestEdge[w] == -1 || kslack < m.slack(m.bestEdge[w]) {
							m.bestEdge[w] = k
						}
					}
					if augmented {
						break
					}
				}
			}
			if augmented {
				break
			}

			deltaType := -1
			var delta int64
			deltaEdge, deltaBlossom := -1, -1

			if !m.maxCard {
				deltaType = 1
				delta = m.minVertexDual()
			}
			for v := 0; v < n; v++ {
				if m.label[m.inBlossom[v]] == 0 && m.bestEdge[v] != -1 {
					d := m.slack(m.bestEdge[v])
					if deltaType == -1 || d < delta {
						delta, deltaType, deltaEdge = d, 2, m.bestEdge[v]
					}
				}
			}
			for b := 0; b < 2*n; b++ {
				if m.parent[b] == -1 && m.label[b] == 1 && m.bestEdge[b] != -1 {
					d := m.slack(m.bestEdge[b]) / 2
					if deltaType == -1 || d < delta {
						delta, deltaType, deltaEdge = d, 3, m.bestEdge[b]
					}
				}
			}
			for b := n; b < 2*n; b++ {
				if m.base[b] >= 0 && m.parent[b] == -1 && m.label[b] == 2 &&
					(deltaType == -1 || m.dual[b] < delta) {
					delta, deltaType, deltaBlossom = m.dual[b], 4, b
				}
			}
			if deltaType == -1 {
				// No further progress possible; finish the stage optimally.
				deltaType = 1
				delta = max(0, m.minVertexDual())
			}

			for v := 0; v < n; v++ {
				switch m.label[m.inBlossom[v]] {
				case 1:
					m.dual[v] -= delta
				case 2:
					m.dual[v] += delta
				}
			}
			for b := n; b < 2*n; b++ {
				if m.base[b] >= 0 && m.parent[b] == -1 {
					switch m.label[b] {
					case 1:
						m.dual[b] += delta
					case 2:
						m.dual[b] -= delta
					}
				}
			}

			if deltaType == 1 {
				break
			}
			switch deltaType {
			case 2:
				m.allowEdge[deltaEdge] = true
				i, j := m.edges[deltaEdge].U, m.edges[deltaEdge].V
				if m.label[m.inBlossom[i]] == 0 {
					i = j
				}
				m.queue = append(m.queue, i)
			case 3:
				m.allowEdge[deltaEdge] = true
				m.queue = append(m.queue, m.edges[deltaEdge].U)
			case 4:
				m.expandBlossom(deltaBlossom, false)
			}
		}

		if !augmented {
			break
		}
		for b := n; b < 2*n; b++ {
			if m.parent[b] == -1 && m.base[b] >= 0 && m.label[b] == 1 && m.dual[b] == 0 {
				m.expandBlossom(b, true)
			}
		}
	}
}

func (m *matcher) minVertexDual() int64 {
	lo := m.dual[0]
	for v := 1; v < m.n; v++ {
		if m.dual[v] < lo {
			lo = m.dual[v]
		}
	}
	return lo
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
