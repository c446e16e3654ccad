package hexboard

import (
	"fmt"
	"maps"
	"slices"
)

// RoadGraph is the node adjacency restricted to one player's roads and
// ships: graph[a][b] is the edge joining a and b.
type RoadGraph map[NodeID]map[NodeID]EdgeID

func (g RoadGraph) link(a, b NodeID, e EdgeID) {
	if g[a] == nil {
		g[a] = make(map[NodeID]EdgeID)
	}
	g[a][b] = e
}

func (g RoadGraph) unlink(a, b NodeID) {
	delete(g[a], b)
	if len(g[a]) == 0 {
		delete(g, a)
	}
}

// Nodes returns the nodes touched by the graph in ascending order.
func (g RoadGraph) Nodes() []NodeID {
	return slices.Sorted(maps.Keys(g))
}

func (g RoadGraph) clone() RoadGraph {
	out := make(RoadGraph, len(g))
	for n, adj := range g {
		out[n] = maps.Clone(adj)
	}
	return out
}

// PlayerState is one player's view of the board: where it may build now
// and eventually, its own pieces, production and longest route.
// It holds no reference to the game; every operation takes a View.
type PlayerState struct {
	id PlayerID

	legalRoads           coordSet[EdgeID]
	potentialRoads       coordSet[EdgeID]
	legalShips           coordSet[EdgeID]
	potentialShips       coordSet[EdgeID]
	legalSettlements     coordSet[NodeID]
	potentialSettlements coordSet[NodeID]
	potentialCities      coordSet[NodeID]

	roads       coordSet[EdgeID]
	ships       coordSet[EdgeID]
	settlements coordSet[NodeID]
	cities      coordSet[NodeID]
	graph       RoadGraph
	pieces      []Piece

	ledger Ledger
	dice   *DiceIndex

	routes  []RoutePath
	longest int

	startAreas   map[int]bool
	settledAreas map[int]bool
}

// NewPlayerState seats player id on the board described by v. Legal and
// potential sets are derived from v.Topo and whatever v.Pieces already holds.
func NewPlayerState(v View, id PlayerID, supply Supply) *PlayerState {
	nodes, edges := 0, 0
	if v.Topo != nil {
		nodes, edges = v.Topo.NodeCount(), v.Topo.EdgeCount()
	}
	p := &PlayerState{
		id:                   id,
		legalRoads:           newCoordSet[EdgeID](edges),
		potentialRoads:       newCoordSet[EdgeID](edges),
		legalShips:           newCoordSet[EdgeID](edges),
		potentialShips:       newCoordSet[EdgeID](edges),
		legalSettlements:     newCoordSet[NodeID](nodes),
		potentialSettlements: newCoordSet[NodeID](nodes),
		potentialCities:      newCoordSet[NodeID](nodes),
		roads:                newCoordSet[EdgeID](edges),
		ships:                newCoordSet[EdgeID](edges),
		settlements:          newCoordSet[NodeID](nodes),
		cities:               newCoordSet[NodeID](nodes),
		graph:                make(RoadGraph),
		ledger:               NewLedger(supply),
		dice:                 NewDiceIndex(),
		startAreas:           make(map[int]bool),
		settledAreas:         make(map[int]bool),
	}
	p.rescanAll(v)
	return p
}

// ID returns the player this state belongs to.
func (p *PlayerState) ID() PlayerID { return p.id }

// PlacePiece updates this player's state for a piece placed by anyone.
// Own pieces also update the ledger, road graph and dice index. The piece
// must already be present in v.Pieces. On error nothing is changed.
func (p *PlayerState) PlacePiece(v View, pc Piece) error {
	if err := checkCoord(v.Topo, pc); err != nil {
		return err
	}
	if p.owns(pc) {
		if err := p.checkPlace(pc); err != nil {
			return err
		}
		p.applyOwnPlacement(v, pc)
	}
	p.rescanAround(v, pc)
	return nil
}

// RemovePiece is the inverse of PlacePiece. The piece must already be gone
// from v.Pieces. Every affected coordinate is re-derived from the board.
func (p *PlayerState) RemovePiece(v View, pc Piece) error {
	if err := checkCoord(v.Topo, pc); err != nil {
		return err
	}
	if p.owns(pc) {
		if err := p.checkRemove(pc); err != nil {
			return err
		}
		p.applyOwnRemoval(v, pc)
	}
	p.rescanAround(v, pc)
	return nil
}

// OnPhaseChange re-derives potential settlements after the game moves
// between initial placement and normal play.
func (p *PlayerState) OnPhaseChange(v View) {
	for n := range p.legalSettlements.bits {
		p.deriveNode(v, NodeID(n))
	}
}

func (p *PlayerState) owns(pc Piece) bool {
	return pc.Owner == p.id && (pc.Kind.OnEdge() || pc.Kind.IsBuilding())
}

func checkCoord(topo Topology, pc Piece) error {
	switch {
	case pc.Kind.OnEdge():
		if !validEdge(topo, pc.Edge()) {
			return fmt.Errorf("%s at edge %d: %w", pc.Kind, pc.Coord, ErrInvalidCoordinate)
		}
	case pc.Kind.IsBuilding(), pc.Kind == Fortress, pc.Kind == Village:
		if !validNode(topo, pc.Node()) {
			return fmt.Errorf("%s at node %d: %w", pc.Kind, pc.Coord, ErrInvalidCoordinate)
		}
	default:
		return fmt.Errorf("piece kind %q: %w", pc.Kind, ErrInvalidCoordinate)
	}
	return nil
}

// checkPlace validates an own placement against this player's current sets.
func (p *PlayerState) checkPlace(pc Piece) error {
	if p.ledger.Remaining(pc.Kind) <= 0 {
		return fmt.Errorf("player %d %s: %w", p.id, pc.Kind, ErrNoPiecesLeft)
	}
	legal := false
	switch pc.Kind {
	case Road:
		legal = p.legalRoads.has(pc.Edge())
	case Ship:
		legal = p.legalShips.has(pc.Edge())
	case Settlement:
		legal = p.legalSettlements.has(pc.Node())
	case City:
		// Cities only upgrade the player's own settlement.
		legal = p.settlements.has(pc.Node())
	}
	if !legal {
		return fmt.Errorf("player %d %s at %d: %w", p.id, pc.Kind, pc.Coord, ErrIllegalPlacement)
	}
	return nil
}

func (p *PlayerState) checkRemove(pc Piece) error {
	present := false
	switch pc.Kind {
	case Road:
		present = p.roads.has(pc.Edge())
	case Ship:
		present = p.ships.has(pc.Edge())
	case Settlement:
		present = p.settlements.has(pc.Node())
	case City:
		present = p.cities.has(pc.Node())
	}
	if !present {
		return fmt.Errorf("player %d %s at %d: %w", p.id, pc.Kind, pc.Coord, ErrInconsistentRemoval)
	}
	return nil
}

func (p *PlayerState) applyOwnPlacement(v View, pc Piece) {
	// checkPlace guarantees the supply is there.
	_ = p.ledger.take(pc.Kind)
	switch pc.Kind {
	case Road, Ship:
		p.addRoute(v.Topo, pc)
	case Settlement:
		p.settlements.add(pc.Node())
		p.pieces = append(p.pieces, pc)
		p.dice.OnBuildingPlaced(v.Topo, pc.Node(), false)
		p.checkNewRegion(v, pc.Node())
	case City:
		n := pc.Node()
		if p.settlements.remove(n) {
			p.ledger.giveBack(Settlement)
			p.dropPiece(Piece{Kind: Settlement, Owner: p.id, Coord: pc.Coord})
			p.dice.OnBuildingPlaced(v.Topo, n, false)
		} else {
			p.dice.OnBuildingPlaced(v.Topo, n, true)
			p.checkNewRegion(v, n)
		}
		p.cities.add(n)
		p.pieces = append(p.pieces, pc)
	}
}

func (p *PlayerState) applyOwnRemoval(v View, pc Piece) {
	p.ledger.giveBack(pc.Kind)
	switch pc.Kind {
	case Road, Ship:
		p.removeRoute(v.Topo, pc)
	case Settlement:
		p.settlements.remove(pc.Node())
		p.dropPiece(pc)
		p.dice.OnBuildingRemoved(v.Topo, pc.Node(), false)
		if v.Phase == PhaseInitialSecond {
			p.ledger.resources = ResourceSet{}
		}
		p.forgetRegion(v, pc.Node())
	case City:
		n := pc.Node()
		p.cities.remove(n)
		p.dropPiece(pc)
		p.dice.OnBuildingRemoved(v.Topo, n, true)
		if b, ok := v.buildingAt(n); ok && b.Kind == Settlement && b.Owner == p.id {
			// The settlement the city replaced is back on the board.
			p.ledger.remaining.adjust(Settlement, -1)
			p.ledger.vp++
			p.settlements.add(n)
			p.pieces = append(p.pieces, b)
			p.dice.OnBuildingPlaced(v.Topo, n, false)
		} else {
			p.forgetRegion(v, n)
		}
	}
}

func (p *PlayerState) addRoute(topo Topology, pc Piece) {
	e := pc.Edge()
	if pc.Kind == Ship {
		p.ships.add(e)
	} else {
		p.roads.add(e)
	}
	a, b := topo.Endpoints(e)
	p.graph.link(a, b, e)
	p.graph.link(b, a, e)
	p.pieces = append(p.pieces, pc)
}

func (p *PlayerState) removeRoute(topo Topology, pc Piece) {
	e := pc.Edge()
	p.roads.remove(e)
	p.ships.remove(e)
	a, b := topo.Endpoints(e)
	p.graph.unlink(a, b)
	p.graph.unlink(b, a)
	p.dropPiece(pc)
}

func (p *PlayerState) dropPiece(pc Piece) {
	if i := slices.Index(p.pieces, pc); i >= 0 {
		p.pieces = slices.Delete(p.pieces, i, i+1)
	}
}

// AddResources adds n cards of r to the player's holdings.
func (p *PlayerState) AddResources(r Resource, n int) {
	p.ledger.resources.Add(r, n)
}

// Clone returns an independent copy of the player state.
func (p *PlayerState) Clone() *PlayerState {
	c := *p
	c.legalRoads = p.legalRoads.clone()
	c.potentialRoads = p.potentialRoads.clone()
	c.legalShips = p.legalShips.clone()
	c.potentialShips = p.potentialShips.clone()
	c.legalSettlements = p.legalSettlements.clone()
	c.potentialSettlements = p.potentialSettlements.clone()
	c.potentialCities = p.potentialCities.clone()
	c.roads = p.roads.clone()
	c.ships = p.ships.clone()
	c.settlements = p.settlements.clone()
	c.cities = p.cities.clone()
	c.graph = p.graph.clone()
	c.pieces = slices.Clone(p.pieces)
	c.dice = p.dice.Clone()
	c.routes = cloneRoutes(p.routes)
	c.startAreas = maps.Clone(p.startAreas)
	c.settledAreas = maps.Clone(p.settledAreas)
	return &c
}
