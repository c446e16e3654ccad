package hexboard

import (
	"fmt"
	"testing"
)

func newTestBoard(t *testing.T, topo Topology, players int, opts ...Option) *Board {
	t.Helper()
	b, err := NewBoard(topo, players, opts...)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	return b
}

func mustPlace(t *testing.T, b *Board, kind PieceKind, owner PlayerID, coord int) Piece {
	t.Helper()
	pc := Piece{Kind: kind, Owner: owner, Coord: coord}
	if err := b.Place(pc); err != nil {
		t.Fatalf("place %s: %v", pc, err)
	}
	return pc
}

func mustRemove(t *testing.T, b *Board, pc Piece) {
	t.Helper()
	if err := b.Remove(pc); err != nil {
		t.Fatalf("remove %s: %v", pc, err)
	}
}

func mustPlayer(t *testing.T, b *Board, id PlayerID) *PlayerState {
	t.Helper()
	p, err := b.Player(id)
	if err != nil {
		t.Fatalf("player %d: %v", id, err)
	}
	return p
}

func checkInvariants(t *testing.T, b *Board) {
	t.Helper()
	if err := b.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func hexAt(t *testing.T, l *HexLayout, q, r int) HexID {
	t.Helper()
	h, ok := l.HexAt(q, r)
	if !ok {
		t.Fatalf("no hex at (%d,%d)", q, r)
	}
	return h
}

// ring returns the six corners and the six sides of hex (q, r); side i
// joins corner i and corner i+1.
func ring(t *testing.T, l *HexLayout, q, r int) ([6]NodeID, [6]EdgeID) {
	t.Helper()
	h := hexAt(t, l, q, r)
	var corners [6]NodeID
	var sides [6]EdgeID
	for i := range 6 {
		corners[i] = l.CornerNode(h, i)
	}
	for i := range 6 {
		sides[i] = mustEdge(t, l, corners[i], corners[(i+1)%6])
	}
	return corners, sides
}

func mustEdge(t *testing.T, l *HexLayout, a, b NodeID) EdgeID {
	t.Helper()
	e, ok := l.EdgeBetween(a, b)
	if !ok {
		t.Fatalf("no edge between %d and %d", a, b)
	}
	return e
}

// outward returns the edge at corner i of hex (q, r) that is not a side of it.
func outward(t *testing.T, l *HexLayout, q, r, i int) (EdgeID, NodeID) {
	t.Helper()
	corners, sides := ring(t, l, q, r)
	for _, e := range l.NodeEdges(corners[i]) {
		if e != sides[i] && e != sides[(i+5)%6] {
			return e, otherEnd(l, e, corners[i])
		}
	}
	t.Fatalf("corner %d of (%d,%d) has no outward edge", i, q, r)
	return -1, -1
}

// coastLayout is a land hex, a water hex and a second land hex in a row.
// The two land hexes are separate land areas.
func coastLayout() *HexLayout {
	return NewHexLayout([]HexTile{
		{Q: 0, R: 0, Resource: Wheat, Number: 6, Area: 1},
		{Q: 1, R: 0, Water: true},
		{Q: 2, R: 0, Resource: Ore, Number: 8, Area: 2},
	})
}

// stateDiff describes how two player states differ in their sets, ledger
// and production. Piece order and routes are ignored.
func stateDiff(a, b *PlayerState) string {
	type edgeSet struct {
		name string
		x, y *coordSet[EdgeID]
	}
	type nodeSet struct {
		name string
		x, y *coordSet[NodeID]
	}
	for _, s := range []edgeSet{
		{"legal roads", &a.legalRoads, &b.legalRoads},
		{"potential roads", &a.potentialRoads, &b.potentialRoads},
		{"legal ships", &a.legalShips, &b.legalShips},
		{"potential ships", &a.potentialShips, &b.potentialShips},
		{"roads", &a.roads, &b.roads},
		{"ships", &a.ships, &b.ships},
	} {
		if !s.x.equal(s.y) {
			return fmt.Sprintf("%s: %v vs %v", s.name, s.x.members(), s.y.members())
		}
	}
	for _, s := range []nodeSet{
		{"legal settlements", &a.legalSettlements, &b.legalSettlements},
		{"potential settlements", &a.potentialSettlements, &b.potentialSettlements},
		{"potential cities", &a.potentialCities, &b.potentialCities},
		{"settlements", &a.settlements, &b.settlements},
		{"cities", &a.cities, &b.cities},
	} {
		if !s.x.equal(s.y) {
			return fmt.Sprintf("%s: %v vs %v", s.name, s.x.members(), s.y.members())
		}
	}
	if a.ledger != b.ledger {
		return fmt.Sprintf("ledger: %+v vs %+v", a.ledger, b.ledger)
	}
	if !a.dice.Equal(b.dice) {
		return "dice index differs"
	}
	if a.longest != b.longest {
		return fmt.Sprintf("longest route: %d vs %d", a.longest, b.longest)
	}
	return ""
}
