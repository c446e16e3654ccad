package hexboard

import (
	"errors"
	"fmt"
)

// CheckInvariants verifies every player's state against the board and
// returns an error wrapping ErrInvariantViolation listing each breach.
// It is a debug aid; nothing in the package repairs state.
func (b *Board) CheckInvariants() error {
	v := b.view()
	var errs []error
	for _, p := range b.players {
		errs = append(errs, p.checkInvariants(v)...)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvariantViolation, errors.Join(errs...))
}

func (p *PlayerState) checkInvariants(v View) []error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("player %d: "+format, append([]any{p.id}, args...)...))
	}

	for _, e := range p.potentialRoads.members() {
		if !p.legalRoads.has(e) {
			bad("potential road %d not legal", e)
		}
	}
	for _, e := range p.potentialShips.members() {
		if !p.legalShips.has(e) {
			bad("potential ship %d not legal", e)
		}
	}
	for _, n := range p.potentialSettlements.members() {
		if !p.legalSettlements.has(n) {
			bad("potential settlement %d not legal", n)
		}
	}

	for e := range p.legalRoads.bits {
		e := EdgeID(e)
		pc, ok := v.routeAt(e)
		if ok && (p.legalRoads.has(e) || p.legalShips.has(e)) {
			bad("occupied edge %d still legal", e)
		}
		owned := p.roads.has(e) || p.ships.has(e)
		if owned != (ok && pc.Owner == p.id) {
			bad("edge %d ownership disagrees with board", e)
		}
		a, b := v.Topo.Endpoints(e)
		ge, linked := p.graph[a][b]
		if owned != linked || (linked && ge != e) {
			bad("road graph disagrees at edge %d", e)
		}
	}
	for n := range p.legalSettlements.bits {
		n := NodeID(n)
		if p.legalSettlements.has(n) != legalSettlementAt(v, n) {
			bad("settlement legality of node %d disagrees with board", n)
		}
		if p.potentialCities.has(n) != p.settlements.has(n) {
			bad("potential city %d without own settlement", n)
		}
		b, ok := v.buildingAt(n)
		if p.settlements.has(n) != (ok && b.Kind == Settlement && b.Owner == p.id) {
			bad("settlement at node %d disagrees with board", n)
		}
		if p.cities.has(n) != (ok && b.Kind == City && b.Owner == p.id) {
			bad("city at node %d disagrees with board", n)
		}
	}

	if p.longest > p.RouteCount() {
		bad("longest route %d exceeds %d routes", p.longest, p.RouteCount())
	}

	l := p.ledger
	counts := map[PieceKind]int{Road: p.roads.len(), Ship: p.ships.len(), Settlement: p.settlements.len(), City: p.cities.len()}
	for k, n := range counts {
		if l.Placed(k) != n {
			bad("ledger shows %d %s placed, board has %d", l.Placed(k), k, n)
		}
	}
	if vp := p.settlements.len() + 2*p.cities.len(); l.VictoryPoints() != vp {
		bad("ledger shows %d VP, buildings give %d", l.VictoryPoints(), vp)
	}
	if len(p.pieces) != p.roads.len()+p.ships.len()+p.settlements.len()+p.cities.len() {
		bad("%d owned pieces listed", len(p.pieces))
	}

	want := NewDiceIndex()
	for _, n := range p.settlements.members() {
		want.OnBuildingPlaced(v.Topo, n, false)
	}
	for _, n := range p.cities.members() {
		want.OnBuildingPlaced(v.Topo, n, true)
	}
	if !p.dice.Equal(want) {
		bad("dice index disagrees with buildings")
	}
	return errs
}
