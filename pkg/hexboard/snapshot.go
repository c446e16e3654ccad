package hexboard

import (
	"fmt"
	"maps"
	"slices"
)

// PlayerSnapshot holds the player data that replaying placements cannot
// rebuild.
type PlayerSnapshot struct {
	Resources    ResourceSet `json:"resources"`
	StartAreas   []int       `json:"startAreas,omitempty"`
	SettledAreas []int       `json:"settledAreas,omitempty"`
}

// BoardSnapshot is a serializable copy of a Board. Everything derived
// (legal and potential sets, dice index, routes) is rebuilt on restore.
type BoardSnapshot struct {
	Phase   Phase            `json:"phase"`
	Supply  Supply           `json:"supply"`
	Pieces  []Piece          `json:"pieces"`
	Players []PlayerSnapshot `json:"players"`
}

// Snapshot captures the board.
func (b *Board) Snapshot() BoardSnapshot {
	s := BoardSnapshot{
		Phase:  b.phase,
		Supply: b.supply,
		Pieces: b.Placements(),
	}
	for _, p := range b.players {
		s.Players = append(s.Players, PlayerSnapshot{
			Resources:    p.ledger.resources,
			StartAreas:   p.StartingAreas(),
			SettledAreas: p.SettledAreas(),
		})
	}
	return s
}

// RestoreBoard rebuilds a board from s by replaying its placements. No
// events are raised during the replay.
func RestoreBoard(topo Topology, s BoardSnapshot, opts ...Option) (*Board, error) {
	opts = append(slices.Clone(opts), WithSupply(s.Supply), WithPhase(PhasePlay))
	b, err := NewBoard(topo, len(s.Players), opts...)
	if err != nil {
		return nil, fmt.Errorf("restore board: %w", err)
	}
	listener := b.listener
	b.listener = nil
	for i, pc := range s.Pieces {
		if err := b.Place(pc); err != nil {
			return nil, fmt.Errorf("restore board: piece %d: %w", i, err)
		}
	}
	b.listener = listener
	b.SetPhase(s.Phase)
	for i, ps := range s.Players {
		p := b.players[i]
		p.ledger.resources = ps.Resources
		p.startAreas = areaSet(ps.StartAreas)
		p.settledAreas = areaSet(ps.SettledAreas)
	}
	return b, nil
}

func areaSet(areas []int) map[int]bool {
	m := make(map[int]bool, len(areas))
	for _, a := range areas {
		m[a] = true
	}
	return m
}

// Equal reports whether two snapshots describe the same board.
func (s BoardSnapshot) Equal(o BoardSnapshot) bool {
	return s.Phase == o.Phase && s.Supply == o.Supply &&
		slices.Equal(s.Pieces, o.Pieces) &&
		slices.EqualFunc(s.Players, o.Players, func(a, b PlayerSnapshot) bool {
			return a.Resources == b.Resources &&
				maps.Equal(areaSet(a.StartAreas), areaSet(b.StartAreas)) &&
				maps.Equal(areaSet(a.SettledAreas), areaSet(b.SettledAreas))
		})
}
