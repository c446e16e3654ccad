package hexboard

import "fmt"

// PlayerID identifies a seated player. Board-owned pieces use NoPlayer.
type PlayerID int

// NoPlayer owns fortresses and villages.
const NoPlayer PlayerID = -1

// PieceKind is the type of a piece on the board.
type PieceKind string

const (
	Road       PieceKind = "road"
	Settlement PieceKind = "settlement"
	City       PieceKind = "city"
	Ship       PieceKind = "ship"
	Fortress   PieceKind = "fortress"
	Village    PieceKind = "village"
)

// ParsePieceKind converts a stored kind name back into a PieceKind.
func ParsePieceKind(s string) (PieceKind, error) {
	switch k := PieceKind(s); k {
	case Road, Settlement, City, Ship, Fortress, Village:
		return k, nil
	}
	return "", fmt.Errorf("unknown piece kind %q", s)
}

// OnEdge reports whether pieces of this kind stand on edges.
func (k PieceKind) OnEdge() bool {
	return k == Road || k == Ship
}

// IsBuilding reports whether the kind is a settlement or city.
func (k PieceKind) IsBuilding() bool {
	return k == Settlement || k == City
}

// Piece is a single piece on the board. Coord is a NodeID for node pieces
// and an EdgeID for roads and ships.
type Piece struct {
	Kind  PieceKind `json:"kind"`
	Owner PlayerID  `json:"owner"`
	Coord int       `json:"coord"`
}

// Node returns the coordinate as a node. Only meaningful for node pieces.
func (p Piece) Node() NodeID { return NodeID(p.Coord) }

// Edge returns the coordinate as an edge. Only meaningful for roads and ships.
func (p Piece) Edge() EdgeID { return EdgeID(p.Coord) }

func (p Piece) String() string {
	return fmt.Sprintf("%s(p%d@%d)", p.Kind, p.Owner, p.Coord)
}

// Phase is the placement phase the board is in.
type Phase string

const (
	PhaseInitialFirst  Phase = "initial_first"
	PhaseInitialSecond Phase = "initial_second"
	PhasePlay          Phase = "play"
)

// ParsePhase converts a stored phase name back into a Phase.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(s); p {
	case PhaseInitialFirst, PhaseInitialSecond, PhasePlay:
		return p, nil
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

// Initial reports whether p is one of the initial placement phases.
func (p Phase) Initial() bool {
	return p == PhaseInitialFirst || p == PhaseInitialSecond
}

// Occupancy answers what currently stands on a node or edge.
type Occupancy interface {
	BuildingAt(n NodeID) (Piece, bool)
	RouteAt(e EdgeID) (Piece, bool)
}

// View is the read-only game context passed into every player-state
// operation. Pieces must already reflect the piece being placed or removed.
type View struct {
	Topo   Topology
	Pieces Occupancy
	Phase  Phase
	Events Listener // may be nil
}

func (v View) buildingAt(n NodeID) (Piece, bool) {
	if v.Pieces == nil {
		return Piece{}, false
	}
	return v.Pieces.BuildingAt(n)
}

func (v View) routeAt(e EdgeID) (Piece, bool) {
	if v.Pieces == nil {
		return Piece{}, false
	}
	return v.Pieces.RouteAt(e)
}

// blocks reports whether a piece at n cuts routes belonging to owner.
// Foreign settlements, cities and every fortress block; villages do not.
func (v View) blocks(n NodeID, owner PlayerID) bool {
	b, ok := v.buildingAt(n)
	if !ok {
		return false
	}
	switch b.Kind {
	case Fortress:
		return true
	case Settlement, City:
		return b.Owner != owner
	}
	return false
}

// ownBuilding reports whether owner has a settlement or city at n.
func (v View) ownBuilding(n NodeID, owner PlayerID) bool {
	b, ok := v.buildingAt(n)
	return ok && b.Kind.IsBuilding() && b.Owner == owner
}

func (v View) emit(ev PlayerEvent) {
	if v.Events != nil {
		v.Events(ev)
	}
}
