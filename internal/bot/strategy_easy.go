package bot

import (
	"slices"

	"github.com/freeeve/hexboard/internal/bot/features"
	"github.com/freeeve/hexboard/pkg/hexboard"
)

// HeuristicStrategy builds greedily by production: cities first, then the
// richest settlement site, then routes heading for the richest open site.
type HeuristicStrategy struct{}

func (HeuristicStrategy) Name() string { return "easy" }

// nodeScore values a settlement site by its dice weight plus a bonus for
// resources the player does not produce yet.
func nodeScore(b *hexboard.Board, p *hexboard.PlayerState, n hexboard.NodeID) float64 {
	topo := b.Topology()
	score := float64(features.NodePips(topo, n))
	for _, h := range topo.NodeHexes(n) {
		r := topo.ResourceType(h)
		if r == hexboard.NoResource {
			continue
		}
		if len(p.DiceNumbersForResource(r, hexboard.NoHex)) == 0 {
			score += 1.5
		}
	}
	return score
}

func (h HeuristicStrategy) PlaceInitial(b *hexboard.Board, player hexboard.PlayerID) (hexboard.Piece, hexboard.Piece, bool) {
	p, err := b.Player(player)
	if err != nil {
		return hexboard.Piece{}, hexboard.Piece{}, false
	}
	best, bestScore := hexboard.NodeID(-1), -1.0
	for _, n := range p.PotentialSettlements() {
		if len(openingRoutes(b, p, n)) == 0 {
			continue
		}
		if s := nodeScore(b, p, n) + jitter(); s > bestScore {
			best, bestScore = n, s
		}
	}
	if best < 0 {
		return hexboard.Piece{}, hexboard.Piece{}, false
	}

	routes := openingRoutes(b, p, best)
	route := slices.MaxFunc(routes, func(a, c hexboard.Piece) int {
		return cmpFloat(h.routeScore(b, p, hexboard.EdgeID(a.Coord)), h.routeScore(b, p, hexboard.EdgeID(c.Coord)))
	})
	return hexboard.Piece{Kind: hexboard.Settlement, Owner: player, Coord: int(best)}, route, true
}

func (h HeuristicStrategy) ChooseMove(b *hexboard.Board, player hexboard.PlayerID) (hexboard.Piece, bool) {
	p, err := b.Player(player)
	if err != nil {
		return hexboard.Piece{}, false
	}
	moves := candidateMoves(b, player)
	if len(moves) == 0 {
		return hexboard.Piece{}, false
	}
	best, bestScore := moves[0], -1.0
	for _, m := range moves {
		var s float64
		switch m.Kind {
		case hexboard.City:
			s = 100 + float64(features.NodePips(b.Topology(), m.Node()))
		case hexboard.Settlement:
			s = 50 + nodeScore(b, p, m.Node())
		default:
			s = h.routeScore(b, p, m.Edge())
		}
		if s += jitter(); s > bestScore {
			best, bestScore = m, s
		}
	}
	return best, true
}

// routeScore values a route by the best settlement site it leads to within
// two steps, discounted by distance.
func (HeuristicStrategy) routeScore(b *hexboard.Board, p *hexboard.PlayerState, e hexboard.EdgeID) float64 {
	topo := b.Topology()
	best := 0.0
	x, y := topo.Endpoints(e)
	for _, end := range []hexboard.NodeID{x, y} {
		if p.IsLegalSettlement(end) {
			best = max(best, nodeScore(b, p, end))
		}
		for _, next := range topo.AdjacentNodes(end) {
			if p.IsLegalSettlement(next) {
				best = max(best, nodeScore(b, p, next)/2)
			}
		}
	}
	return best
}

func jitter() float64 { return botFloat64() * 0.01 }

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
