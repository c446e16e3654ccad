package hexboard

import "slices"

// HexTile describes one hex of a layout in axial coordinates (pointy-top).
type HexTile struct {
	Q, R     int
	Resource Resource
	Number   int  // Dice number, 0 if the hex never produces
	Water    bool // Water hexes carry ships but no settlements
	Area     int  // Land area number, 0 for none
}

type layoutNode struct {
	adjNodes []NodeID
	edges    []EdgeID
	hexes    []HexID
	onLand   bool
	area     int
}

type layoutEdge struct {
	a, b      NodeID
	neighbors []EdgeID
	land      bool
	ship      bool
}

// HexLayout is a Topology computed from a list of hexes. Nodes and edges are
// the corners and sides of the listed hexes, numbered in first-seen order.
type HexLayout struct {
	hexes   []HexTile
	corners [][6]NodeID
	nodes   []layoutNode
	edges   []layoutEdge
}

var _ Topology = (*HexLayout)(nil)

// cornerOffsets are the six corners of a pointy-top hex relative to its
// center, in units where the center of (q, r) is (2q+r, 3r).
var cornerOffsets = [6][2]int{
	{0, -2}, {1, -1}, {1, 1}, {0, 2}, {-1, 1}, {-1, -1},
}

// NewHexLayout builds the node/edge graph for the given hexes.
func NewHexLayout(tiles []HexTile) *HexLayout {
	l := &HexLayout{hexes: slices.Clone(tiles)}

	nodeAt := make(map[[2]int]NodeID)
	edgeAt := make(map[[2]NodeID]EdgeID)
	edgeHexes := make(map[EdgeID][]HexID)

	node := func(x, y int) NodeID {
		key := [2]int{x, y}
		if id, ok := nodeAt[key]; ok {
			return id
		}
		id := NodeID(len(l.nodes))
		nodeAt[key] = id
		l.nodes = append(l.nodes, layoutNode{})
		return id
	}

	for hi, h := range l.hexes {
		hex := HexID(hi)
		cx, cy := 2*h.Q+h.R, 3*h.R
		var corners [6]NodeID
		for i, off := range cornerOffsets {
			corners[i] = node(cx+off[0], cy+off[1])
			n := &l.nodes[corners[i]]
			n.hexes = append(n.hexes, hex)
			if !h.Water {
				n.onLand = true
				if n.area == 0 {
					n.area = h.Area
				}
			}
		}
		for i := range corners {
			a, b := corners[i], corners[(i+1)%6]
			if a > b {
				a, b = b, a
			}
			key := [2]NodeID{a, b}
			e, ok := edgeAt[key]
			if !ok {
				e = EdgeID(len(l.edges))
				edgeAt[key] = e
				l.edges = append(l.edges, layoutEdge{a: a, b: b})
				l.nodes[a].edges = append(l.nodes[a].edges, e)
				l.nodes[b].edges = append(l.nodes[b].edges, e)
				l.nodes[a].adjNodes = append(l.nodes[a].adjNodes, b)
				l.nodes[b].adjNodes = append(l.nodes[b].adjNodes, a)
			}
			edgeHexes[e] = append(edgeHexes[e], hex)
		}
		l.corners = append(l.corners, corners)
	}

	for i := range l.edges {
		e := &l.edges[i]
		hexes := edgeHexes[EdgeID(i)]
		if len(hexes) < 2 {
			e.ship = true // board margin is open sea
		}
		for _, h := range hexes {
			if l.hexes[h].Water {
				e.ship = true
			} else {
				e.land = true
			}
		}
		for _, n := range []NodeID{e.a, e.b} {
			for _, other := range l.nodes[n].edges {
				if other != EdgeID(i) {
					e.neighbors = append(e.neighbors, other)
				}
			}
		}
	}
	return l
}

func (l *HexLayout) NodeCount() int { return len(l.nodes) }
func (l *HexLayout) EdgeCount() int { return len(l.edges) }
func (l *HexLayout) HexCount() int  { return len(l.hexes) }

func (l *HexLayout) AdjacentNodes(n NodeID) []NodeID {
	if !validNode(l, n) {
		return nil
	}
	return l.nodes[n].adjNodes
}

func (l *HexLayout) NodeEdges(n NodeID) []EdgeID {
	if !validNode(l, n) {
		return nil
	}
	return l.nodes[n].edges
}

func (l *HexLayout) EdgeNeighbors(e EdgeID) []EdgeID {
	if !validEdge(l, e) {
		return nil
	}
	return l.edges[e].neighbors
}

func (l *HexLayout) Endpoints(e EdgeID) (NodeID, NodeID) {
	if !validEdge(l, e) {
		return -1, -1
	}
	return l.edges[e].a, l.edges[e].b
}

func (l *HexLayout) NodeHexes(n NodeID) []HexID {
	if !validNode(l, n) {
		return nil
	}
	return l.nodes[n].hexes
}

func (l *HexLayout) DiceNumber(h HexID) int {
	if !validHex(l, h) {
		return 0
	}
	return l.hexes[h].Number
}

func (l *HexLayout) ResourceType(h HexID) Resource {
	if !validHex(l, h) || l.hexes[h].Water {
		return NoResource
	}
	return l.hexes[h].Resource
}

func (l *HexLayout) IsNodeOnBoard(n NodeID) bool {
	return validNode(l, n) && l.nodes[n].onLand
}

func (l *HexLayout) IsRoadEdge(e EdgeID) bool {
	return validEdge(l, e) && l.edges[e].land
}

func (l *HexLayout) IsShipEdge(e EdgeID) bool {
	return validEdge(l, e) && l.edges[e].ship
}

func (l *HexLayout) LandArea(n NodeID) int {
	if !validNode(l, n) {
		return 0
	}
	return l.nodes[n].area
}

// Hex returns the tile description of hex h.
func (l *HexLayout) Hex(h HexID) HexTile {
	return l.hexes[h]
}

// HexAt returns the hex at axial (q, r), if listed.
func (l *HexLayout) HexAt(q, r int) (HexID, bool) {
	for i, h := range l.hexes {
		if h.Q == q && h.R == r {
			return HexID(i), true
		}
	}
	return NoHex, false
}

// CornerNode returns the node at corner i (0 = top, clockwise) of hex h.
func (l *HexLayout) CornerNode(h HexID, corner int) NodeID {
	return l.corners[h][corner%6]
}

// EdgeBetween returns the edge joining a and b.
func (l *HexLayout) EdgeBetween(a, b NodeID) (EdgeID, bool) {
	return edgeBetween(l, a, b)
}
