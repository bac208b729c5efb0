package chain

import (
	"sort"

	"directMail/domain"
)

// Graph is the edge list of one chain indexed by current offer. Traversals
// are iterative and keep a visited set, so malformed cyclic data terminates.
type Graph struct {
	ChainID uint64
	edges   []domain.OfferSequence
	byOffer map[uint64][]int
}

func NewGraph(chainID uint64, edges []domain.OfferSequence) *Graph {
	sorted := make([]domain.OfferSequence, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	g := &Graph{ChainID: chainID, edges: sorted, byOffer: make(map[uint64][]int)}
	for i, e := range sorted {
		g.byOffer[e.CurrentOfferID] = append(g.byOffer[e.CurrentOfferID], i)
	}
	return g
}

func (g *Graph) Edges() []domain.OfferSequence {
	return g.edges
}

func (g *Graph) Empty() bool {
	return len(g.edges) == 0
}

// From returns every edge leaving offerID, terminal ones included.
func (g *Graph) From(offerID uint64) []domain.OfferSequence {
	idx := g.byOffer[offerID]
	out := make([]domain.OfferSequence, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i])
	}
	return out
}

// Outgoing returns the non-terminal edges leaving offerID, one per distinct next offer.
func (g *Graph) Outgoing(offerID uint64) []domain.OfferSequence {
	seen := make(map[uint64]bool)
	var out []domain.OfferSequence
	for _, e := range g.From(offerID) {
		if e.NextOfferID == nil || seen[*e.NextOfferID] {
			continue
		}
		seen[*e.NextOfferID] = true
		out = append(out, e)
	}
	return out
}

// Entry is the edge that identifies offerID as a step: its lowest-id edge.
func (g *Graph) Entry(offerID uint64) (domain.OfferSequence, bool) {
	idx := g.byOffer[offerID]
	if len(idx) == 0 {
		return domain.OfferSequence{}, false
	}
	return g.edges[idx[0]], true
}

func (g *Graph) SequenceIDs(offerID uint64) []uint64 {
	idx := g.byOffer[offerID]
	ids := make([]uint64, 0, len(idx))
	for _, i := range idx {
		ids = append(ids, g.edges[i].ID)
	}
	return ids
}

// Reachable lists the offers reachable from start in at most depth hops, start
// first, in breadth-first order. A negative depth means no limit.
func (g *Graph) Reachable(start uint64, depth int) []uint64 {
	levels := g.bfs(start, depth)
	out := make([]uint64, 0, len(levels))
	for _, l := range levels {
		out = append(out, l.OfferID)
	}
	return out
}

// Levels returns the breadth-first depth of every offer reachable from start.
func (g *Graph) Levels(start uint64) []domain.ChainLevel {
	return g.bfs(start, -1)
}

func (g *Graph) bfs(start uint64, depth int) []domain.ChainLevel {
	visited := map[uint64]bool{start: true}
	queue := []domain.ChainLevel{{OfferID: start, Level: 0}}
	var out []domain.ChainLevel

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)

		if depth >= 0 && cur.Level >= depth {
			continue
		}
		for _, e := range g.Outgoing(cur.OfferID) {
			next := *e.NextOfferID
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, domain.ChainLevel{OfferID: next, Level: cur.Level + 1})
		}
	}
	return out
}
