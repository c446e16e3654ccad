package hexboard

import (
	"fmt"
	"slices"
)

// Board is one game's occupancy plus every seated player's state. It
// validates placements against the whole board, then fans each change out
// to all players and recomputes the longest routes it may have affected.
// A Board is not safe for concurrent use.
type Board struct {
	topo     Topology
	phase    Phase
	supply   Supply
	listener Listener

	buildings []Piece
	hasBldg   []bool
	upgraded  []bool // city stands on one of its owner's settlements
	routes    []Piece
	hasRoute  []bool

	placements []Piece
	players    []*PlayerState
}

var _ Occupancy = (*Board)(nil)

// Option configures a Board.
type Option func(*Board)

// WithSupply sets the per-player piece supply.
func WithSupply(s Supply) Option {
	return func(b *Board) { b.supply = s }
}

// WithListener registers a receiver for player events.
func WithListener(l Listener) Option {
	return func(b *Board) { b.listener = l }
}

// WithPhase sets the starting phase. Boards start in PhaseInitialFirst.
func WithPhase(p Phase) Option {
	return func(b *Board) { b.phase = p }
}

// NewBoard seats players 0..players-1 on topo.
func NewBoard(topo Topology, players int, opts ...Option) (*Board, error) {
	if topo == nil {
		return nil, fmt.Errorf("new board: nil topology: %w", ErrInvalidCoordinate)
	}
	if players < 1 {
		return nil, fmt.Errorf("new board: %d players: %w", players, ErrUnknownPlayer)
	}
	b := &Board{
		topo:      topo,
		phase:     PhaseInitialFirst,
		supply:    DefaultSupply(),
		buildings: make([]Piece, topo.NodeCount()),
		hasBldg:   make([]bool, topo.NodeCount()),
		upgraded:  make([]bool, topo.NodeCount()),
		routes:    make([]Piece, topo.EdgeCount()),
		hasRoute:  make([]bool, topo.EdgeCount()),
	}
	for _, opt := range opts {
		opt(b)
	}
	for i := range players {
		b.players = append(b.players, NewPlayerState(b.view(), PlayerID(i), b.supply))
	}
	return b, nil
}

func (b *Board) view() View {
	return View{Topo: b.topo, Pieces: b, Phase: b.phase, Events: b.listener}
}

// View returns the read-only context for calling PlayerState directly.
func (b *Board) View() View { return b.view() }

func (b *Board) Topology() Topology { return b.topo }
func (b *Board) Phase() Phase       { return b.phase }
func (b *Board) NumPlayers() int    { return len(b.players) }

// Player returns the state of player id.
func (b *Board) Player(id PlayerID) (*PlayerState, error) {
	if id < 0 || int(id) >= len(b.players) {
		return nil, fmt.Errorf("player %d: %w", id, ErrUnknownPlayer)
	}
	return b.players[id], nil
}

// Players returns every player's state in seat order.
func (b *Board) Players() []*PlayerState { return slices.Clone(b.players) }

// BuildingAt returns the settlement, city, fortress or village on n.
func (b *Board) BuildingAt(n NodeID) (Piece, bool) {
	if !validNode(b.topo, n) || !b.hasBldg[n] {
		return Piece{}, false
	}
	return b.buildings[n], true
}

// RouteAt returns the road or ship on e.
func (b *Board) RouteAt(e EdgeID) (Piece, bool) {
	if !validEdge(b.topo, e) || !b.hasRoute[e] {
		return Piece{}, false
	}
	return b.routes[e], true
}

// Placements returns the placements that rebuild the current board, in
// order. A settlement later upgraded is listed before its city.
func (b *Board) Placements() []Piece { return slices.Clone(b.placements) }

// Place puts pc on the board. Players' pieces must be legal for their
// owner and within supply; fortresses and villages must be board-owned
// and go on an empty land node. On error the board is unchanged.
func (b *Board) Place(pc Piece) error {
	if err := b.checkPlace(pc); err != nil {
		return fmt.Errorf("place %s: %w", pc, err)
	}

	if pc.Kind.OnEdge() {
		b.routes[pc.Coord], b.hasRoute[pc.Coord] = pc, true
	} else {
		n := pc.Node()
		if pc.Kind == City {
			prev, ok := b.BuildingAt(n)
			b.upgraded[n] = ok && prev.Kind == Settlement && prev.Owner == pc.Owner
		}
		b.buildings[n], b.hasBldg[n] = pc, true
	}
	b.placements = append(b.placements, pc)

	v := b.view()
	for _, p := range b.players {
		if err := p.PlacePiece(v, pc); err != nil {
			return fmt.Errorf("place %s: player %d: %w", pc, p.id, err)
		}
	}
	if pc.Kind == Settlement && b.phase == PhaseInitialSecond {
		b.grantStartingResources(pc)
	}
	b.refreshRoutes(pc)
	return nil
}

func (b *Board) checkPlace(pc Piece) error {
	if err := checkCoord(b.topo, pc); err != nil {
		return err
	}
	switch pc.Kind {
	case Fortress, Village:
		if pc.Owner != NoPlayer {
			return fmt.Errorf("%s owned by player %d: %w", pc.Kind, pc.Owner, ErrIllegalPlacement)
		}
		if _, ok := b.BuildingAt(pc.Node()); ok || !b.topo.IsNodeOnBoard(pc.Node()) {
			return ErrIllegalPlacement
		}
		return nil
	}
	owner, err := b.Player(pc.Owner)
	if err != nil {
		return err
	}
	return owner.checkPlace(pc)
}

// grantStartingResources gives one card per producing hex around the
// second initial settlement.
func (b *Board) grantStartingResources(pc Piece) {
	p := b.players[pc.Owner]
	for _, h := range b.topo.NodeHexes(pc.Node()) {
		if b.topo.DiceNumber(h) > 0 {
			p.AddResources(b.topo.ResourceType(h), 1)
		}
	}
}

// Remove takes pc off the board. Removing a city that was built on a
// settlement puts the settlement back.
func (b *Board) Remove(pc Piece) error {
	if err := checkCoord(b.topo, pc); err != nil {
		return fmt.Errorf("remove %s: %w", pc, err)
	}
	var current Piece
	var ok bool
	if pc.Kind.OnEdge() {
		current, ok = b.RouteAt(pc.Edge())
	} else {
		current, ok = b.BuildingAt(pc.Node())
	}
	if !ok || current != pc {
		return fmt.Errorf("remove %s: %w", pc, ErrInconsistentRemoval)
	}

	if pc.Kind.OnEdge() {
		b.routes[pc.Coord], b.hasRoute[pc.Coord] = Piece{}, false
	} else {
		n := pc.Node()
		if pc.Kind == City && b.upgraded[n] {
			b.buildings[n] = Piece{Kind: Settlement, Owner: pc.Owner, Coord: pc.Coord}
			b.upgraded[n] = false
		} else {
			b.buildings[n], b.hasBldg[n] = Piece{}, false
		}
	}
	if i := slices.Index(b.placements, pc); i >= 0 {
		b.placements = slices.Delete(b.placements, i, i+1)
	}

	v := b.view()
	for _, p := range b.players {
		if err := p.RemovePiece(v, pc); err != nil {
			return fmt.Errorf("remove %s: player %d: %w", pc, p.id, err)
		}
	}
	b.refreshRoutes(pc)
	return nil
}

// refreshRoutes recomputes the longest route of every player a change to
// pc could affect: the owner of a road or ship, or anyone whose network
// passes through a node whose building changed.
func (b *Board) refreshRoutes(pc Piece) {
	v := b.view()
	if pc.Kind.OnEdge() {
		b.players[pc.Owner].UpdateLongestRoute(v)
		return
	}
	for _, p := range b.players {
		if p.TouchesNode(pc.Node()) {
			p.UpdateLongestRoute(v)
		}
	}
}

// SetPhase moves the board to phase and re-derives potential settlements.
func (b *Board) SetPhase(phase Phase) {
	if phase == b.phase {
		return
	}
	b.phase = phase
	v := b.view()
	for _, p := range b.players {
		p.OnPhaseChange(v)
	}
}

// LongestRoute returns the player holding the longest route of at least
// minLength, or NoPlayer. A tie at the top keeps the title with holder when
// holder is among the leaders; otherwise nobody holds it.
func (b *Board) LongestRoute(minLength int, holder PlayerID) (PlayerID, int) {
	bestLen := 0
	var leaders []PlayerID
	for _, p := range b.players {
		l := p.LongestRouteLength()
		switch {
		case l < minLength || l < bestLen:
		case l > bestLen:
			bestLen, leaders = l, []PlayerID{p.id}
		default:
			leaders = append(leaders, p.id)
		}
	}
	switch {
	case len(leaders) == 1:
		return leaders[0], bestLen
	case slices.Contains(leaders, holder):
		return holder, bestLen
	case len(leaders) == 0:
		return NoPlayer, 0
	}
	return NoPlayer, bestLen
}

// Clone returns an independent copy of the board. The listener is shared.
func (b *Board) Clone() *Board {
	c := *b
	c.buildings = slices.Clone(b.buildings)
	c.hasBldg = slices.Clone(b.hasBldg)
	c.upgraded = slices.Clone(b.upgraded)
	c.routes = slices.Clone(b.routes)
	c.hasRoute = slices.Clone(b.hasRoute)
	c.placements = slices.Clone(b.placements)
	c.players = make([]*PlayerState, len(b.players))
	for i, p := range b.players {
		c.players[i] = p.Clone()
	}
	return &c
}
