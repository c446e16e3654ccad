package hexboard

// Legal and potential status is never toggled blindly. After any change
// every coordinate whose status could depend on it is re-derived from the
// board: the changed edge, its endpoints and the edges meeting there for a
// route, or the node, its neighbours and the edges at the node for a
// building. A foreign settlement that cuts a road therefore withdraws every
// potential road that depended on passing through it.

func (p *PlayerState) rescanAll(v View) {
	for e := range p.legalRoads.bits {
		p.deriveEdge(v, EdgeID(e))
	}
	for n := range p.legalSettlements.bits {
		p.deriveNode(v, NodeID(n))
	}
}

func (p *PlayerState) rescanAround(v View, pc Piece) {
	if pc.Kind.OnEdge() {
		e := pc.Edge()
		p.deriveEdge(v, e)
		a, b := v.Topo.Endpoints(e)
		p.deriveNode(v, a)
		p.deriveNode(v, b)
		for _, ne := range v.Topo.EdgeNeighbors(e) {
			p.deriveEdge(v, ne)
		}
		return
	}
	n := pc.Node()
	p.deriveNode(v, n)
	for _, adj := range v.Topo.AdjacentNodes(n) {
		p.deriveNode(v, adj)
	}
	for _, e := range v.Topo.NodeEdges(n) {
		p.deriveEdge(v, e)
	}
}

func (p *PlayerState) deriveEdge(v View, e EdgeID) {
	_, occupied := v.routeAt(e)
	legalRoad := !occupied && v.Topo.IsRoadEdge(e)
	legalShip := !occupied && v.Topo.IsShipEdge(e)
	p.legalRoads.set(e, legalRoad)
	p.legalShips.set(e, legalShip)
	p.potentialRoads.set(e, legalRoad && p.reaches(v, e, Road))
	p.potentialShips.set(e, legalShip && p.reaches(v, e, Ship))
}

// reaches reports whether a route of kind on e would join this player's
// network at either endpoint.
func (p *PlayerState) reaches(v View, e EdgeID, kind PieceKind) bool {
	a, b := v.Topo.Endpoints(e)
	return p.connectsAt(v, a, e, kind) || p.connectsAt(v, b, e, kind)
}

// connectsAt reports whether a new route of kind on e can attach at node n.
// An own building always connects. Otherwise n must be unblocked and carry
// another own route of the same kind; switching between roads and ships
// needs a building.
func (p *PlayerState) connectsAt(v View, n NodeID, e EdgeID, kind PieceKind) bool {
	if v.ownBuilding(n, p.id) {
		return true
	}
	if v.blocks(n, p.id) {
		return false
	}
	own := &p.roads
	if kind == Ship {
		own = &p.ships
	}
	for _, other := range p.graph[n] {
		if other != e && own.has(other) {
			return true
		}
	}
	return false
}

func (p *PlayerState) deriveNode(v View, n NodeID) {
	legal := legalSettlementAt(v, n)
	p.legalSettlements.set(n, legal)
	p.potentialSettlements.set(n, legal && (v.Phase.Initial() || len(p.graph[n]) > 0))
	p.potentialCities.set(n, p.settlements.has(n))
}

// legalSettlementAt applies the placement and distance rules: the node is
// on land and empty, and no settlement, city or fortress stands next to it.
func legalSettlementAt(v View, n NodeID) bool {
	if !v.Topo.IsNodeOnBoard(n) {
		return false
	}
	if _, ok := v.buildingAt(n); ok {
		return false
	}
	for _, adj := range v.Topo.AdjacentNodes(n) {
		if b, ok := v.buildingAt(adj); ok && b.Kind != Village {
			return false
		}
	}
	return true
}

func (p *PlayerState) IsLegalRoad(e EdgeID) bool           { return p.legalRoads.has(e) }
func (p *PlayerState) IsLegalShip(e EdgeID) bool           { return p.legalShips.has(e) }
func (p *PlayerState) IsLegalSettlement(n NodeID) bool     { return p.legalSettlements.has(n) }
func (p *PlayerState) IsPotentialRoad(e EdgeID) bool       { return p.potentialRoads.has(e) }
func (p *PlayerState) IsPotentialShip(e EdgeID) bool       { return p.potentialShips.has(e) }
func (p *PlayerState) IsPotentialSettlement(n NodeID) bool { return p.potentialSettlements.has(n) }
func (p *PlayerState) IsPotentialCity(n NodeID) bool       { return p.potentialCities.has(n) }

func (p *PlayerState) HasAnyPotentialRoad() bool       { return p.potentialRoads.len() > 0 }
func (p *PlayerState) HasAnyPotentialShip() bool       { return p.potentialShips.len() > 0 }
func (p *PlayerState) HasAnyPotentialSettlement() bool { return p.potentialSettlements.len() > 0 }
func (p *PlayerState) HasAnyPotentialCity() bool       { return p.potentialCities.len() > 0 }

// HasTwoPotentialRoads reports whether two roads could be built right now
// without the first opening the second.
func (p *PlayerState) HasTwoPotentialRoads() bool { return p.potentialRoads.len() >= 2 }

// PotentialRoads returns the edges where a road could be built now.
func (p *PlayerState) PotentialRoads() []EdgeID { return p.potentialRoads.members() }

// PotentialShips returns the edges where a ship could be built now.
func (p *PlayerState) PotentialShips() []EdgeID { return p.potentialShips.members() }

// PotentialSettlements returns the nodes where a settlement could be built now.
func (p *PlayerState) PotentialSettlements() []NodeID { return p.potentialSettlements.members() }

// PotentialCities returns the nodes holding this player's settlements.
func (p *PlayerState) PotentialCities() []NodeID { return p.potentialCities.members() }

// LegalSettlements returns the nodes a settlement could ever be built on.
func (p *PlayerState) LegalSettlements() []NodeID { return p.legalSettlements.members() }

// RoadGraph returns a copy of the player's road graph.
func (p *PlayerState) RoadGraph() RoadGraph { return p.graph.clone() }

// RoadNodes returns every node touched by the player's roads and ships.
func (p *PlayerState) RoadNodes() []NodeID { return p.graph.Nodes() }

// IsConnectedByRoad reports whether a and b are joined through the
// player's own roads and ships.
func (p *PlayerState) IsConnectedByRoad(a, b NodeID) bool {
	if a == b {
		return len(p.graph[a]) > 0
	}
	seen := map[NodeID]bool{a: true}
	queue := []NodeID{a}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for next := range p.graph[n] {
			if next == b {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// Pieces returns the player's pieces in placement order.
func (p *PlayerState) Pieces() []Piece { return append([]Piece(nil), p.pieces...) }

// RouteCount returns the number of roads and ships the player has placed.
func (p *PlayerState) RouteCount() int { return p.roads.len() + p.ships.len() }

func (p *PlayerState) Ledger() Ledger         { return p.ledger }
func (p *PlayerState) VictoryPoints() int     { return p.ledger.VictoryPoints() }
func (p *PlayerState) Resources() ResourceSet { return p.ledger.Resources() }
func (p *PlayerState) Dice() *DiceIndex       { return p.dice }

// ResourcesForDiceRoll returns what a roll of number yields this player
// with the robber on robber (NoHex for none).
func (p *PlayerState) ResourcesForDiceRoll(number int, robber HexID) ResourceSet {
	return p.dice.ResourcesForNumber(number, robber)
}

// DiceNumbersForResource returns the dice numbers that yield r.
func (p *PlayerState) DiceNumbersForResource(r Resource, robber HexID) []int {
	return p.dice.NumbersForResource(r, robber)
}

// HexContributesNothing reports whether hex h produces nothing for this player.
func (p *PlayerState) HexContributesNothing(h HexID) bool {
	return p.dice.HexContributesNothing(h)
}
