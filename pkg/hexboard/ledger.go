package hexboard

import (
	"fmt"
	"strings"
)

// Supply is the number of pieces of each kind a player starts with.
type Supply struct {
	Roads       int `json:"roads"`
	Settlements int `json:"settlements"`
	Cities      int `json:"cities"`
	Ships       int `json:"ships"`
}

// DefaultSupply returns the standard per-player piece supply.
func DefaultSupply() Supply {
	return Supply{Roads: 15, Settlements: 5, Cities: 4, Ships: 15}
}

// Count returns the number of pieces of kind k in s.
func (s Supply) Count(k PieceKind) int {
	switch k {
	case Road:
		return s.Roads
	case Settlement:
		return s.Settlements
	case City:
		return s.Cities
	case Ship:
		return s.Ships
	}
	return 0
}

func (s *Supply) adjust(k PieceKind, delta int) {
	switch k {
	case Road:
		s.Roads += delta
	case Settlement:
		s.Settlements += delta
	case City:
		s.Cities += delta
	case Ship:
		s.Ships += delta
	}
}

// ResourceSet counts resource cards by type.
type ResourceSet [Wood + 1]int

// Get returns the amount of r.
func (rs ResourceSet) Get(r Resource) int {
	if r <= NoResource || r > Wood {
		return 0
	}
	return rs[r]
}

// Add adds n of r. Negative n removes, never below zero.
func (rs *ResourceSet) Add(r Resource, n int) {
	if r <= NoResource || r > Wood {
		return
	}
	rs[r] = max(rs[r]+n, 0)
}

// Total returns the number of cards in the set.
func (rs ResourceSet) Total() int {
	total := 0
	for _, r := range AllResources() {
		total += rs[r]
	}
	return total
}

func (rs ResourceSet) String() string {
	var parts []string
	for _, r := range AllResources() {
		if rs[r] > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", r, rs[r]))
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Ledger tracks a player's unplaced pieces, building victory points and
// resource holdings. It never checks legality.
type Ledger struct {
	supply    Supply
	remaining Supply
	vp        int
	resources ResourceSet
}

// NewLedger returns a ledger with every piece of supply unplaced.
func NewLedger(supply Supply) Ledger {
	return Ledger{supply: supply, remaining: supply}
}

// Remaining returns the unplaced pieces of kind k.
func (l Ledger) Remaining(k PieceKind) int { return l.remaining.Count(k) }

// Placed returns how many pieces of kind k are on the board.
func (l Ledger) Placed(k PieceKind) int { return l.supply.Count(k) - l.remaining.Count(k) }

// VictoryPoints returns the points from settlements (1) and cities (2).
func (l Ledger) VictoryPoints() int { return l.vp }

// Resources returns the current resource holdings.
func (l Ledger) Resources() ResourceSet { return l.resources }

func (l *Ledger) take(k PieceKind) error {
	if l.remaining.Count(k) <= 0 {
		return fmt.Errorf("%s: %w", k, ErrNoPiecesLeft)
	}
	l.remaining.adjust(k, -1)
	l.vp += buildingPoints(k)
	return nil
}

func (l *Ledger) giveBack(k PieceKind) {
	l.remaining.adjust(k, 1)
	l.vp -= buildingPoints(k)
}

func buildingPoints(k PieceKind) int {
	switch k {
	case Settlement:
		return 1
	case City:
		return 2
	}
	return 0
}
