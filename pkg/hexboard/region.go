package hexboard

import (
	"maps"
	"slices"
)

// EventKind names a player event raised by the board.
type EventKind string

// EventSettledNewRegion is raised when a player builds in a land area that
// is neither one of its starting areas nor one it has settled before.
const EventSettledNewRegion EventKind = "settled_new_region"

// PlayerEvent is a geometric fact reported to scenario rules. Deciding what
// it is worth is up to the listener.
type PlayerEvent struct {
	Kind   EventKind `json:"kind"`
	Player PlayerID  `json:"player"`
	Area   int       `json:"area"`
	Node   NodeID    `json:"node"`
	First  bool      `json:"first"` // first new area this player has settled
}

// Listener receives player events.
type Listener func(PlayerEvent)

func (p *PlayerState) checkNewRegion(v View, n NodeID) {
	area := v.Topo.LandArea(n)
	if area == 0 {
		return
	}
	if v.Phase.Initial() {
		p.startAreas[area] = true
		return
	}
	if p.startAreas[area] || p.settledAreas[area] {
		return
	}
	first := len(p.settledAreas) == 0
	p.settledAreas[area] = true
	v.emit(PlayerEvent{Kind: EventSettledNewRegion, Player: p.id, Area: area, Node: n, First: first})
}

// forgetRegion drops an area once the player's last building in it is gone.
func (p *PlayerState) forgetRegion(v View, n NodeID) {
	area := v.Topo.LandArea(n)
	if area == 0 {
		return
	}
	for _, set := range []*coordSet[NodeID]{&p.settlements, &p.cities} {
		for _, other := range set.members() {
			if other != n && v.Topo.LandArea(other) == area {
				return
			}
		}
	}
	delete(p.startAreas, area)
	delete(p.settledAreas, area)
}

// StartingAreas returns the land areas settled during initial placement.
func (p *PlayerState) StartingAreas() []int {
	return slices.Sorted(maps.Keys(p.startAreas))
}

// SettledAreas returns the land areas settled after initial placement.
func (p *PlayerState) SettledAreas() []int {
	return slices.Sorted(maps.Keys(p.settledAreas))
}
