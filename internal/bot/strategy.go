package bot

import (
	"github.com/freeeve/hexboard/pkg/hexboard"
)

// Strategy chooses placements for a bot player. Strategies read a board but
// never modify it.
type Strategy interface {
	Name() string
	// PlaceInitial picks an opening settlement and the route leaving it.
	PlaceInitial(b *hexboard.Board, player hexboard.PlayerID) (settlement, route hexboard.Piece, ok bool)
	// ChooseMove picks one placement during play, or reports none.
	ChooseMove(b *hexboard.Board, player hexboard.PlayerID) (hexboard.Piece, bool)
}

// StrategyForDifficulty returns the strategy for a bot difficulty level.
func StrategyForDifficulty(difficulty string) Strategy {
	switch difficulty {
	case "random":
		return RandomStrategy{}
	default:
		return HeuristicStrategy{}
	}
}

// candidateMoves lists every placement the player could make next: the
// potential build sites for which supply remains.
func candidateMoves(b *hexboard.Board, player hexboard.PlayerID) []hexboard.Piece {
	p, err := b.Player(player)
	if err != nil {
		return nil
	}
	l := p.Ledger()
	var moves []hexboard.Piece
	add := func(kind hexboard.PieceKind, coord int) {
		moves = append(moves, hexboard.Piece{Kind: kind, Owner: player, Coord: coord})
	}
	if l.Remaining(hexboard.City) > 0 {
		for _, n := range p.PotentialCities() {
			add(hexboard.City, int(n))
		}
	}
	if l.Remaining(hexboard.Settlement) > 0 {
		for _, n := range p.PotentialSettlements() {
			add(hexboard.Settlement, int(n))
		}
	}
	if l.Remaining(hexboard.Road) > 0 {
		for _, e := range p.PotentialRoads() {
			add(hexboard.Road, int(e))
		}
	}
	if l.Remaining(hexboard.Ship) > 0 {
		for _, e := range p.PotentialShips() {
			add(hexboard.Ship, int(e))
		}
	}
	return moves
}

// openingRoutes lists the routes that may leave a freshly placed opening
// settlement at n: legal roads, or legal ships where no road fits.
func openingRoutes(b *hexboard.Board, p *hexboard.PlayerState, n hexboard.NodeID) []hexboard.Piece {
	var roads, ships []hexboard.Piece
	for _, e := range b.Topology().NodeEdges(n) {
		switch {
		case p.IsLegalRoad(e):
			roads = append(roads, hexboard.Piece{Kind: hexboard.Road, Owner: p.ID(), Coord: int(e)})
		case p.IsLegalShip(e):
			ships = append(ships, hexboard.Piece{Kind: hexboard.Ship, Owner: p.ID(), Coord: int(e)})
		}
	}
	if len(roads) > 0 {
		return roads
	}
	return ships
}

// RandomStrategy picks uniformly among candidate moves.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) PlaceInitial(b *hexboard.Board, player hexboard.PlayerID) (hexboard.Piece, hexboard.Piece, bool) {
	p, err := b.Player(player)
	if err != nil {
		return hexboard.Piece{}, hexboard.Piece{}, false
	}
	nodes := p.PotentialSettlements()
	for _, i := range permutation(len(nodes)) {
		n := nodes[i]
		routes := openingRoutes(b, p, n)
		if len(routes) == 0 {
			continue
		}
		settlement := hexboard.Piece{Kind: hexboard.Settlement, Owner: player, Coord: int(n)}
		return settlement, routes[botIntN(len(routes))], true
	}
	return hexboard.Piece{}, hexboard.Piece{}, false
}

func (RandomStrategy) ChooseMove(b *hexboard.Board, player hexboard.PlayerID) (hexboard.Piece, bool) {
	moves := candidateMoves(b, player)
	if len(moves) == 0 {
		return hexboard.Piece{}, false
	}
	return moves[botIntN(len(moves))], true
}

func permutation(n int) []int {
	if botRng != nil {
		return botRng.Perm(n)
	}
	perm := make([]int, n)
	for i := range perm {
		j := botIntN(i + 1)
		perm[i], perm[j] = perm[j], i
	}
	return perm
}
