// Package features encodes a player's view of a board as dense tensors for
// move-evaluation models.
package features

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/freeeve/hexboard/pkg/hexboard"
)

// Encoding is one player's view of a board.
type Encoding struct {
	Nodes  *tensor.Dense // (NodeCount, NumNodeFeatures) float32
	Edges  *tensor.Dense // (EdgeCount, NumEdgeFeatures) float32
	Global *tensor.Dense // (NumGlobalFeatures) float32
}

// DiceWeight returns how many of the 36 two-dice outcomes roll number.
func DiceWeight(number int) int {
	if number < 2 || number > 12 {
		return 0
	}
	return 6 - abs(7-number)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// NodePips returns the summed dice weight of the producing hexes around n.
func NodePips(topo hexboard.Topology, n hexboard.NodeID) int {
	pips := 0
	for _, h := range topo.NodeHexes(n) {
		if topo.ResourceType(h) != hexboard.NoResource {
			pips += DiceWeight(topo.DiceNumber(h))
		}
	}
	return pips
}

// Encode builds the tensors for player's view of b.
func Encode(b *hexboard.Board, player hexboard.PlayerID) (*Encoding, error) {
	p, err := b.Player(player)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	topo := b.Topology()
	nodes := EncodeNodes(b, p)
	edges := EncodeEdges(b, p)
	global := EncodeGlobal(b, p)
	return &Encoding{
		Nodes: tensor.New(
			tensor.WithShape(topo.NodeCount(), NumNodeFeatures),
			tensor.Of(tensor.Float32),
			tensor.WithBacking(nodes),
		),
		Edges: tensor.New(
			tensor.WithShape(topo.EdgeCount(), NumEdgeFeatures),
			tensor.Of(tensor.Float32),
			tensor.WithBacking(edges),
		),
		Global: tensor.New(
			tensor.WithShape(NumGlobalFeatures),
			tensor.Of(tensor.Float32),
			tensor.WithBacking(global),
		),
	}, nil
}

// EncodeNodes returns the node features as a flat row-major array.
func EncodeNodes(b *hexboard.Board, p *hexboard.PlayerState) []float32 {
	topo := b.Topology()
	out := make([]float32, topo.NodeCount()*NumNodeFeatures)
	for i := range topo.NodeCount() {
		n := hexboard.NodeID(i)
		row := out[i*NumNodeFeatures : (i+1)*NumNodeFeatures]

		if topo.IsNodeOnBoard(n) {
			row[FeatNodeOnBoard] = 1
		}
		if pc, ok := b.BuildingAt(n); ok {
			own := pc.Owner == p.ID()
			switch {
			case pc.Kind == hexboard.Fortress:
				row[FeatFortress] = 1
			case pc.Kind == hexboard.Village:
				row[FeatVillage] = 1
			case pc.Kind == hexboard.Settlement && own:
				row[FeatOwnSettlement] = 1
			case pc.Kind == hexboard.City && own:
				row[FeatOwnCity] = 1
			case pc.Kind == hexboard.Settlement:
				row[FeatOppSettlement] = 1
			case pc.Kind == hexboard.City:
				row[FeatOppCity] = 1
			}
		}
		row[FeatLegalSettlement] = flag(p.IsLegalSettlement(n))
		row[FeatPotentialSettlement] = flag(p.IsPotentialSettlement(n))
		row[FeatPotentialCity] = flag(p.IsPotentialCity(n))

		for _, h := range topo.NodeHexes(n) {
			r := topo.ResourceType(h)
			if r == hexboard.NoResource {
				continue
			}
			w := float32(DiceWeight(topo.DiceNumber(h))) / 36
			row[FeatPips] += w
			row[FeatResourcePips+int(r)-1] += w
		}
	}
	return out
}

// EncodeEdges returns the edge features as a flat row-major array.
func EncodeEdges(b *hexboard.Board, p *hexboard.PlayerState) []float32 {
	topo := b.Topology()
	out := make([]float32, topo.EdgeCount()*NumEdgeFeatures)
	for i := range topo.EdgeCount() {
		e := hexboard.EdgeID(i)
		row := out[i*NumEdgeFeatures : (i+1)*NumEdgeFeatures]

		row[FeatRoadEdge] = flag(topo.IsRoadEdge(e))
		row[FeatShipEdge] = flag(topo.IsShipEdge(e))
		if pc, ok := b.RouteAt(e); ok {
			offset := FeatOppRoad
			if pc.Owner == p.ID() {
				offset = FeatOwnRoad
			}
			if pc.Kind == hexboard.Ship {
				offset++
			}
			row[offset] = 1
		}
		row[FeatPotentialRoad] = flag(p.IsPotentialRoad(e))
		row[FeatPotentialShip] = flag(p.IsPotentialShip(e))
	}
	return out
}

// EncodeGlobal returns the player-level features.
func EncodeGlobal(b *hexboard.Board, p *hexboard.PlayerState) []float32 {
	out := make([]float32, NumGlobalFeatures)
	out[FeatVictoryPoints] = float32(p.VictoryPoints()) / maxVictoryPoints

	l := p.Ledger()
	for i, k := range []hexboard.PieceKind{hexboard.Road, hexboard.Settlement, hexboard.City, hexboard.Ship} {
		if total := l.Remaining(k) + l.Placed(k); total > 0 {
			out[FeatRemaining+i] = float32(l.Remaining(k)) / float32(total)
		}
	}
	out[FeatLongestRoute] = float32(p.LongestRouteLength()) / maxRouteLength

	res := p.Resources()
	for i, r := range hexboard.AllResources() {
		out[FeatResources+i] = float32(res.Get(r)) / maxResourceCount
	}

	switch b.Phase() {
	case hexboard.PhaseInitialFirst:
		out[FeatPhase] = 1
	case hexboard.PhaseInitialSecond:
		out[FeatPhase+1] = 1
	default:
		out[FeatPhase+2] = 1
	}
	return out
}

// EdgeIndex returns the (2, EdgeCount) int64 endpoint tensor of topo, the
// adjacency input for graph models.
func EdgeIndex(topo hexboard.Topology) *tensor.Dense {
	count := topo.EdgeCount()
	data := make([]int64, 2*count)
	for i := range count {
		a, b := topo.Endpoints(hexboard.EdgeID(i))
		data[i] = int64(a)
		data[count+i] = int64(b)
	}
	return tensor.New(
		tensor.WithShape(2, count),
		tensor.Of(tensor.Int64),
		tensor.WithBacking(data),
	)
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
