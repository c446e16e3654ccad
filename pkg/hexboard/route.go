package hexboard

import (
	"maps"
	"slices"
)

// RoutePath is a simple path through one player's roads and ships.
type RoutePath struct {
	Start  NodeID
	End    NodeID
	Length int
	Edges  []EdgeID
}

func (r RoutePath) overlaps(o RoutePath) bool {
	for _, e := range r.Edges {
		if slices.Contains(o.Edges, e) {
			return true
		}
	}
	return false
}

func cloneRoutes(rs []RoutePath) []RoutePath {
	out := make([]RoutePath, len(rs))
	for i, r := range rs {
		out[i] = r
		out[i].Edges = slices.Clone(r.Edges)
	}
	return out
}

// edgeBits is a visited-edge set owned by one search branch.
type edgeBits []uint64

func (b edgeBits) has(e EdgeID) bool { return b[e/64]&(1<<(uint(e)%64)) != 0 }

func (b edgeBits) with(e EdgeID) edgeBits {
	c := slices.Clone(b)
	c[e/64] |= 1 << (uint(e) % 64)
	return c
}

type routeFrame struct {
	start   NodeID
	node    NodeID
	kind    PieceKind // kind of the edge used to reach node
	visited edgeBits
	edges   []EdgeID
}

// LongestRoute returns the length of owner's longest simple route through
// graph and the edge-disjoint set of maximal paths it kept. A path may
// leave its start node freely but ends at any later node holding a foreign
// settlement, city or fortress. Moving between a road and a ship needs an
// own building at the node.
//
// Every node of the graph seeds a depth-first search. Each branch carries
// its own visited-edge set. When a branch can go no further, every kept
// path sharing an edge with it survives only if strictly longer; the new
// path is kept if no overlapping path survived.
func LongestRoute(v View, owner PlayerID, graph RoadGraph) (int, []RoutePath) {
	if len(graph) == 0 || v.Topo == nil {
		return 0, nil
	}
	words := (v.Topo.EdgeCount() + 63) / 64

	var kept []RoutePath
	for _, start := range graph.Nodes() {
		stack := []routeFrame{{start: start, node: start, visited: make(edgeBits, words)}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			extended := false
			if len(f.edges) == 0 || !v.blocks(f.node, owner) {
				adj := graph[f.node]
				for _, next := range slices.Sorted(maps.Keys(adj)) {
					e := adj[next]
					if f.visited.has(e) {
						continue
					}
					kind := routeKind(v, e)
					if len(f.edges) > 0 && kind != f.kind && !v.ownBuilding(f.node, owner) {
						continue
					}
					stack = append(stack, routeFrame{
						start:   f.start,
						node:    next,
						kind:    kind,
						visited: f.visited.with(e),
						edges:   append(slices.Clone(f.edges), e),
					})
					extended = true
				}
			}
			if !extended && len(f.edges) > 0 {
				kept = retainPath(kept, RoutePath{Start: f.start, End: f.node, Length: len(f.edges), Edges: f.edges})
			}
		}
	}

	longest := 0
	for _, r := range kept {
		longest = max(longest, r.Length)
	}
	return longest, kept
}

func routeKind(v View, e EdgeID) PieceKind {
	if pc, ok := v.routeAt(e); ok {
		return pc.Kind
	}
	return Road
}

func retainPath(kept []RoutePath, path RoutePath) []RoutePath {
	out := kept[:0]
	blocked := false
	for _, old := range kept {
		if !old.overlaps(path) {
			out = append(out, old)
			continue
		}
		if old.Length > path.Length {
			out = append(out, old)
			blocked = true
		}
	}
	if !blocked {
		out = append(out, path)
	}
	return out
}

// UpdateLongestRoute recomputes the player's longest route from the board.
func (p *PlayerState) UpdateLongestRoute(v View) int {
	p.longest, p.routes = LongestRoute(v, p.id, p.graph)
	return p.longest
}

// LongestRouteLength returns the length computed by the last UpdateLongestRoute.
func (p *PlayerState) LongestRouteLength() int { return p.longest }

// RoutePaths returns the kept maximal paths from the last UpdateLongestRoute.
func (p *PlayerState) RoutePaths() []RoutePath { return cloneRoutes(p.routes) }

// TouchesNode reports whether the player's road graph reaches n.
func (p *PlayerState) TouchesNode(n NodeID) bool { return len(p.graph[n]) > 0 }
