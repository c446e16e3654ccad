package features

import (
	"testing"

	"gorgonia.org/tensor"

	"github.com/freeeve/hexboard/pkg/hexboard"
)

func newBoard(t *testing.T) (*hexboard.Board, *hexboard.HexLayout) {
	t.Helper()
	l := hexboard.StandardLayout()
	b, err := hexboard.NewBoard(l, 2)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	return b, l
}

func TestDiceWeight(t *testing.T) {
	cases := map[int]int{0: 0, 2: 1, 6: 5, 7: 6, 8: 5, 12: 1, 13: 0}
	for n, want := range cases {
		if got := DiceWeight(n); got != want {
			t.Errorf("DiceWeight(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestEncodeShapes(t *testing.T) {
	b, _ := newBoard(t)
	enc, err := Encode(b, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !enc.Nodes.Shape().Eq(tensor.Shape{hexboard.StandardNodeCount, NumNodeFeatures}) {
		t.Errorf("unexpected node shape %v", enc.Nodes.Shape())
	}
	if !enc.Edges.Shape().Eq(tensor.Shape{hexboard.StandardEdgeCount, NumEdgeFeatures}) {
		t.Errorf("unexpected edge shape %v", enc.Edges.Shape())
	}
	if !enc.Global.Shape().Eq(tensor.Shape{NumGlobalFeatures}) {
		t.Errorf("unexpected global shape %v", enc.Global.Shape())
	}
	if enc.Nodes.Dtype() != tensor.Float32 {
		t.Errorf("expected float32, got %v", enc.Nodes.Dtype())
	}

	if _, err := Encode(b, 5); err == nil {
		t.Error("expected error for unknown player")
	}
}

func at(t *testing.T, d *tensor.Dense, coords ...int) float32 {
	t.Helper()
	v, err := d.At(coords...)
	if err != nil {
		t.Fatalf("At%v: %v", coords, err)
	}
	return v.(float32)
}

func TestEncodeOwnership(t *testing.T) {
	b, l := newBoard(t)
	h, _ := l.HexAt(1, -1)
	n0, n1 := l.CornerNode(h, 0), l.CornerNode(h, 1)
	e, _ := l.EdgeBetween(n0, n1)
	if err := b.Place(hexboard.Piece{Kind: hexboard.Settlement, Owner: 0, Coord: int(n0)}); err != nil {
		t.Fatalf("place settlement: %v", err)
	}
	if err := b.Place(hexboard.Piece{Kind: hexboard.Road, Owner: 0, Coord: int(e)}); err != nil {
		t.Fatalf("place road: %v", err)
	}

	own, _ := Encode(b, 0)
	opp, _ := Encode(b, 1)

	if at(t, own.Nodes, int(n0), FeatOwnSettlement) != 1 || at(t, opp.Nodes, int(n0), FeatOppSettlement) != 1 {
		t.Error("settlement ownership not encoded from each side")
	}
	if at(t, own.Nodes, int(n0), FeatPotentialCity) != 1 || at(t, opp.Nodes, int(n0), FeatPotentialCity) != 0 {
		t.Error("potential city only belongs to the owner")
	}
	if at(t, own.Nodes, int(n1), FeatLegalSettlement) != 0 {
		t.Error("neighbour of a settlement must not be legal")
	}
	if at(t, own.Edges, int(e), FeatOwnRoad) != 1 || at(t, opp.Edges, int(e), FeatOppRoad) != 1 {
		t.Error("road ownership not encoded from each side")
	}

	// Sheep 2, wood 9 and sheep 4 around the top corner: 1 + 4 + 3 pips.
	if got := at(t, own.Nodes, int(n0), FeatPips); got < 8.0/36-1e-6 || got > 8.0/36+1e-6 {
		t.Errorf("expected 8/36 pips, got %v", got)
	}
	if NodePips(l, n0) != 8 {
		t.Errorf("expected 8 pips, got %d", NodePips(l, n0))
	}
	sheep := at(t, own.Nodes, int(n0), FeatResourcePips+int(hexboard.Sheep)-1)
	if sheep < 4.0/36-1e-6 || sheep > 4.0/36+1e-6 {
		t.Errorf("expected 4/36 sheep pips, got %v", sheep)
	}

	if got := at(t, own.Global, FeatVictoryPoints); got != 0.1 {
		t.Errorf("expected VP feature 0.1, got %v", got)
	}
	if got := at(t, own.Global, FeatPhase); got != 1 {
		t.Errorf("expected initial_first phase flag, got %v", got)
	}
}

func TestEdgeIndex(t *testing.T) {
	l := hexboard.StandardLayout()
	idx := EdgeIndex(l)
	if !idx.Shape().Eq(tensor.Shape{2, hexboard.StandardEdgeCount}) {
		t.Fatalf("unexpected shape %v", idx.Shape())
	}
	a, b := l.Endpoints(7)
	va, _ := idx.At(0, 7)
	vb, _ := idx.At(1, 7)
	if va.(int64) != int64(a) || vb.(int64) != int64(b) {
		t.Errorf("edge 7: expected (%d,%d), got (%v,%v)", a, b, va, vb)
	}
}
