package hexboard

// NodeID identifies a node (settlement/city site) on the board graph.
type NodeID int

// EdgeID identifies an edge (road/ship site) between two adjacent nodes.
type EdgeID int

// HexID identifies a hex tile.
type HexID int

// NoHex is used where a hex argument is optional, e.g. "no robber".
const NoHex HexID = -1

// Resource is the resource type a hex produces.
type Resource int

const (
	NoResource Resource = iota // Desert, water
	Clay
	Ore
	Sheep
	Wheat
	Wood
)

// AllResources returns the producing resource types in standard order.
func AllResources() []Resource {
	return []Resource{Clay, Ore, Sheep, Wheat, Wood}
}

func (r Resource) String() string {
	switch r {
	case Clay:
		return "clay"
	case Ore:
		return "ore"
	case Sheep:
		return "sheep"
	case Wheat:
		return "wheat"
	case Wood:
		return "wood"
	}
	return "none"
}

// Topology is the immutable per-game board graph. Coordinates are dense
// indices in [0, NodeCount()), [0, EdgeCount()) and [0, HexCount()).
// Every method is a pure lookup.
type Topology interface {
	NodeCount() int
	EdgeCount() int
	HexCount() int

	// AdjacentNodes returns the nodes one edge away from n.
	AdjacentNodes(n NodeID) []NodeID
	// NodeEdges returns the edges touching n.
	NodeEdges(n NodeID) []EdgeID
	// EdgeNeighbors returns the edges sharing an endpoint with e, excluding e.
	EdgeNeighbors(e EdgeID) []EdgeID
	// Endpoints returns the two nodes joined by e.
	Endpoints(e EdgeID) (NodeID, NodeID)
	// NodeHexes returns the hexes touching n.
	NodeHexes(n NodeID) []HexID

	DiceNumber(h HexID) int
	ResourceType(h HexID) Resource

	// IsNodeOnBoard reports whether a settlement may ever stand on n.
	IsNodeOnBoard(n NodeID) bool
	// IsRoadEdge reports whether e touches land.
	IsRoadEdge(e EdgeID) bool
	// IsShipEdge reports whether e touches water or the board margin.
	IsShipEdge(e EdgeID) bool
	// LandArea returns the land area number of n, or 0 if it has none.
	LandArea(n NodeID) int
}

func validNode(t Topology, n NodeID) bool {
	return t != nil && n >= 0 && int(n) < t.NodeCount()
}

func validEdge(t Topology, e EdgeID) bool {
	return t != nil && e >= 0 && int(e) < t.EdgeCount()
}

func validHex(t Topology, h HexID) bool {
	return t != nil && h >= 0 && int(h) < t.HexCount()
}

// otherEnd returns the endpoint of e that is not n.
func otherEnd(t Topology, e EdgeID, n NodeID) NodeID {
	a, b := t.Endpoints(e)
	if a == n {
		return b
	}
	return a
}

// edgeBetween returns the edge joining a and b, if any.
func edgeBetween(t Topology, a, b NodeID) (EdgeID, bool) {
	for _, e := range t.NodeEdges(a) {
		if otherEnd(t, e, a) == b {
			return e, true
		}
	}
	return -1, false
}
