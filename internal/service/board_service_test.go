package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/freeeve/hexboard/internal/model"
	"github.com/freeeve/hexboard/internal/repository/memory"
	"github.com/freeeve/hexboard/pkg/hexboard"
)

var std = hexboard.StandardLayout()

func corner(t *testing.T, q, r, i int) hexboard.NodeID {
	t.Helper()
	h, ok := std.HexAt(q, r)
	if !ok {
		t.Fatalf("no hex at (%d,%d)", q, r)
	}
	return std.CornerNode(h, i)
}

func side(t *testing.T, q, r, i int) hexboard.EdgeID {
	t.Helper()
	e, ok := std.EdgeBetween(corner(t, q, r, i), corner(t, q, r, i+1))
	if !ok {
		t.Fatalf("no side %d on (%d,%d)", i, q, r)
	}
	return e
}

func settlement(owner hexboard.PlayerID, n hexboard.NodeID) hexboard.Piece {
	return hexboard.Piece{Kind: hexboard.Settlement, Owner: owner, Coord: int(n)}
}

func road(owner hexboard.PlayerID, e hexboard.EdgeID) hexboard.Piece {
	return hexboard.Piece{Kind: hexboard.Road, Owner: owner, Coord: int(e)}
}

type fixture struct {
	games  *memory.GameRepo
	events *flakyEventRepo
	cache  *mockCache
	bc     *mockBroadcaster
	svc    *BoardService
}

func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()
	f := &fixture{
		games:  memory.NewGameRepo(),
		events: &flakyEventRepo{EventRepository: memory.NewEventRepo()},
		bc:     &mockBroadcaster{},
	}
	if withCache {
		f.cache = newMockCache()
	}
	f.svc = f.restart()
	return f
}

// restart returns a fresh service over the same repositories, as after a
// process restart.
func (f *fixture) restart() *BoardService {
	var opts = Options{DebugInvariants: true}
	if f.cache == nil {
		return NewBoardService(f.games, f.events, nil, f.bc, opts)
	}
	return NewBoardService(f.games, f.events, f.cache, f.bc, opts)
}

func (f *fixture) createGame(t *testing.T, players int) string {
	t.Helper()
	g, err := f.svc.CreateGame(context.Background(), "test", "standard", players)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return g.ID
}

func mustPlace(t *testing.T, svc *BoardService, gameID string, pc hexboard.Piece) {
	t.Helper()
	if err := svc.Place(context.Background(), gameID, pc); err != nil {
		t.Fatalf("place %s: %v", pc, err)
	}
}

// setupOpening places a settlement and road for player 0 and a settlement
// for player 1.
func setupOpening(t *testing.T, svc *BoardService, gameID string) {
	t.Helper()
	mustPlace(t, svc, gameID, settlement(0, corner(t, 1, -1, 0)))
	mustPlace(t, svc, gameID, road(0, side(t, 1, -1, 0)))
	mustPlace(t, svc, gameID, settlement(1, corner(t, -1, 1, 3)))
}

func TestCreateGameValidation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	if _, err := f.svc.CreateGame(ctx, "x", "seafarers", 4); !errors.Is(err, ErrUnknownLayout) {
		t.Errorf("expected ErrUnknownLayout, got %v", err)
	}
	if _, err := f.svc.CreateGame(ctx, "x", "standard", 0); !errors.Is(err, ErrInvalidGame) {
		t.Errorf("expected ErrInvalidGame, got %v", err)
	}
	if n := f.svc.ActiveGames(); n != 0 {
		t.Errorf("expected 0 active games, got %d", n)
	}
}

func TestPlaceUpdatesSummary(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	gameID := f.createGame(t, 2)
	setupOpening(t, f.svc, gameID)

	sum, err := f.svc.Summary(ctx, gameID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Seq != 3 {
		t.Errorf("expected seq 3, got %d", sum.Seq)
	}
	if sum.PieceCount != 3 {
		t.Errorf("expected 3 pieces, got %d", sum.PieceCount)
	}
	p0 := sum.Players[0]
	if p0.VictoryPoints != 1 {
		t.Errorf("expected 1 VP, got %d", p0.VictoryPoints)
	}
	if p0.Remaining.Settlements != 4 || p0.Remaining.Roads != 14 {
		t.Errorf("unexpected remaining supply %+v", p0.Remaining)
	}
	if p0.LongestRoute != 1 {
		t.Errorf("expected longest route 1, got %d", p0.LongestRoute)
	}
	if len(p0.PotentialCities) != 1 || p0.PotentialCities[0] != corner(t, 1, -1, 0) {
		t.Errorf("expected one potential city at the settlement, got %v", p0.PotentialCities)
	}
	if len(p0.PotentialRoads) == 0 {
		t.Error("expected potential roads")
	}
	if sum.RouteHolder != hexboard.NoPlayer {
		t.Errorf("expected no route holder, got %d", sum.RouteHolder)
	}

	events, _ := f.events.ListByGame(ctx, gameID)
	if len(events) != 3 {
		t.Fatalf("expected 3 logged events, got %d", len(events))
	}
	if events[1].Kind != "road" || events[1].Seq != 2 {
		t.Errorf("unexpected second event %+v", events[1])
	}

	cb, ok := f.cache.cached(gameID)
	if !ok || cb.Seq != 3 || len(cb.Board.Pieces) != 3 {
		t.Errorf("expected cached snapshot at seq 3, got %+v (ok=%v)", cb, ok)
	}
	if scores := f.cache.routes[gameID]; len(scores) != 2 || scores[0].Length != 1 {
		t.Errorf("unexpected cached route lengths %+v", scores)
	}

	if n := f.bc.count(EventGameCreated); n != 1 {
		t.Errorf("expected 1 game_created, got %d", n)
	}
	if n := f.bc.count(EventPiecePlaced); n != 3 {
		t.Errorf("expected 3 piece_placed, got %d", n)
	}
}

func TestRejectedPlacementIsNotLogged(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	gameID := f.createGame(t, 2)
	setupOpening(t, f.svc, gameID)

	// Adjacent to player 0's settlement.
	err := f.svc.Place(ctx, gameID, settlement(1, corner(t, 1, -1, 1)))
	if !errors.Is(err, hexboard.ErrIllegalPlacement) {
		t.Fatalf("expected ErrIllegalPlacement, got %v", err)
	}
	err = f.svc.Remove(ctx, gameID, road(1, side(t, 1, -1, 0)))
	if !errors.Is(err, hexboard.ErrInconsistentRemoval) {
		t.Fatalf("expected ErrInconsistentRemoval, got %v", err)
	}
	err = f.svc.Place(ctx, gameID, settlement(7, corner(t, 0, 2, 3)))
	if !errors.Is(err, hexboard.ErrUnknownPlayer) {
		t.Fatalf("expected ErrUnknownPlayer, got %v", err)
	}

	seq, _ := f.events.LastSeq(ctx, gameID)
	if seq != 3 {
		t.Errorf("expected seq to stay 3, got %d", seq)
	}
}

func TestRemoveAndReplayFromLog(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	gameID := f.createGame(t, 2)
	setupOpening(t, f.svc, gameID)

	if err := f.svc.Remove(ctx, gameID, road(0, side(t, 1, -1, 0))); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := f.svc.SetPhase(ctx, gameID, hexboard.PhasePlay); err != nil {
		t.Fatalf("set phase: %v", err)
	}
	mustPlace(t, f.svc, gameID, road(0, side(t, 1, -1, 5)))

	want, err := f.svc.Snapshot(ctx, gameID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	restarted := f.restart()
	got, err := restarted.Snapshot(ctx, gameID)
	if err != nil {
		t.Fatalf("snapshot after restart: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("replayed board differs:\n got %+v\nwant %+v", got, want)
	}
	if got.Phase != hexboard.PhasePlay {
		t.Errorf("expected phase play, got %s", got.Phase)
	}
	if f.events.listCalls != 1 {
		t.Errorf("expected one log replay, got %d", f.events.listCalls)
	}
	if n := f.bc.count(EventPieceRemoved); n != 1 {
		t.Errorf("expected 1 piece_removed, got %d", n)
	}
}

func TestRestoreFromCache(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	gameID := f.createGame(t, 2)
	setupOpening(t, f.svc, gameID)
	want, _ := f.svc.Snapshot(ctx, gameID)

	restarted := f.restart()
	got, err := restarted.Snapshot(ctx, gameID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("restored board differs")
	}
	if f.events.listCalls != 0 {
		t.Errorf("expected cache hit without replay, got %d log reads", f.events.listCalls)
	}

	// A later move on the restored board continues the sequence.
	mustPlace(t, restarted, gameID, road(0, side(t, 1, -1, 5)))
	seq, _ := f.events.LastSeq(ctx, gameID)
	if seq != 4 {
		t.Errorf("expected seq 4, got %d", seq)
	}
}

func TestStaleCacheReplaysLog(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	gameID := f.createGame(t, 2)
	setupOpening(t, f.svc, gameID)

	// The log moves on without the cache.
	f.events.EventRepository.Append(ctx, model.PieceEvent{
		GameID: gameID, Seq: 4, Action: model.ActionPlace,
		Kind: "road", Owner: 1, Coord: int(side(t, -1, 1, 2)),
	})

	restarted := f.restart()
	snap, err := restarted.Snapshot(ctx, gameID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Pieces) != 4 {
		t.Errorf("expected 4 pieces after replay, got %d", len(snap.Pieces))
	}
	if f.events.listCalls != 1 {
		t.Errorf("expected replay, got %d log reads", f.events.listCalls)
	}
	if cb, _ := f.cache.cached(gameID); cb.Seq != 4 {
		t.Errorf("expected cache refreshed to seq 4, got %d", cb.Seq)
	}
}

func TestAppendFailureEvictsBoard(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	gameID := f.createGame(t, 2)
	setupOpening(t, f.svc, gameID)

	f.events.failAppend = true
	err := f.svc.Place(ctx, gameID, road(0, side(t, 1, -1, 5)))
	if !errors.Is(err, errAppend) {
		t.Fatalf("expected append error, got %v", err)
	}
	f.events.failAppend = false

	snap, err := f.svc.Snapshot(ctx, gameID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Pieces) != 3 {
		t.Errorf("expected unlogged road to be dropped, got %d pieces", len(snap.Pieces))
	}
}

func TestPhaseAppendFailureKeepsRecord(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	gameID := f.createGame(t, 2)

	f.events.failAppend = true
	err := f.svc.SetPhase(ctx, gameID, hexboard.PhasePlay)
	if !errors.Is(err, errAppend) {
		t.Fatalf("expected append error, got %v", err)
	}
	f.events.failAppend = false

	g, _ := f.games.FindByID(ctx, gameID)
	if g.Phase != string(hexboard.PhaseInitialFirst) {
		t.Errorf("game record moved to %s without a logged phase change", g.Phase)
	}
	sum, err := f.svc.Summary(ctx, gameID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Phase != hexboard.PhaseInitialFirst {
		t.Errorf("expected board phase initial_first, got %s", sum.Phase)
	}
}

func TestPhaseRecordCatchesUpOnLoad(t *testing.T) {
	ctx := context.Background()
	games := &flakyGameRepo{GameRepository: memory.NewGameRepo()}
	events := memory.NewEventRepo()
	svc := NewBoardService(games, events, nil, nil, Options{})
	g, err := svc.CreateGame(ctx, "test", "standard", 2)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	games.failUpdate = true
	if err := svc.SetPhase(ctx, g.ID, hexboard.PhasePlay); err != nil {
		t.Fatalf("set phase: %v", err)
	}
	rec, _ := games.FindByID(ctx, g.ID)
	if rec.Phase != string(hexboard.PhaseInitialFirst) {
		t.Fatalf("expected the failed update to leave initial_first, got %s", rec.Phase)
	}

	games.failUpdate = false
	svc = NewBoardService(games, events, nil, nil, Options{})
	sum, err := svc.Summary(ctx, g.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Phase != hexboard.PhasePlay {
		t.Errorf("expected replayed phase play, got %s", sum.Phase)
	}
	rec, _ = games.FindByID(ctx, g.ID)
	if rec.Phase != string(hexboard.PhasePlay) {
		t.Errorf("expected the record to catch up to play, got %s", rec.Phase)
	}
}

func TestSetPhase(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	gameID := f.createGame(t, 2)

	if err := f.svc.SetPhase(ctx, gameID, "robber"); err == nil {
		t.Error("expected error for unknown phase")
	}
	if err := f.svc.SetPhase(ctx, gameID, hexboard.PhaseInitialSecond); err != nil {
		t.Fatalf("set phase: %v", err)
	}
	g, _ := f.games.FindByID(ctx, gameID)
	if g.Phase != string(hexboard.PhaseInitialSecond) {
		t.Errorf("expected game record phase initial_second, got %s", g.Phase)
	}
	if n := f.bc.count(EventPhaseChanged); n != 1 {
		t.Errorf("expected 1 phase_changed, got %d", n)
	}
}

func TestProductionAfterSecondSettlement(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	gameID := f.createGame(t, 2)

	if err := f.svc.SetPhase(ctx, gameID, hexboard.PhaseInitialSecond); err != nil {
		t.Fatalf("set phase: %v", err)
	}
	// Top corner of sheep 4 also touches sheep 2 and wood 9.
	mustPlace(t, f.svc, gameID, settlement(0, corner(t, 1, -1, 0)))

	sum, _ := f.svc.Summary(ctx, gameID)
	res := sum.Players[0].Resources
	if res.Get(hexboard.Sheep) != 2 || res.Get(hexboard.Wood) != 1 {
		t.Errorf("expected starting resources sheep=2 wood=1, got %s", res)
	}

	prod, err := f.svc.Production(ctx, gameID, 4, hexboard.NoHex)
	if err != nil {
		t.Fatalf("production: %v", err)
	}
	if prod[0].Get(hexboard.Sheep) != 1 || prod[1].Total() != 0 {
		t.Errorf("unexpected production %v", prod)
	}

	robber, _ := std.HexAt(1, -1)
	prod, _ = f.svc.Production(ctx, gameID, 4, robber)
	if prod[0].Total() != 0 {
		t.Errorf("expected robber to block production, got %s", prod[0])
	}
}

func TestFinishGame(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	gameID := f.createGame(t, 2)
	setupOpening(t, f.svc, gameID)

	if err := f.svc.FinishGame(ctx, gameID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, ok := f.cache.cached(gameID); ok {
		t.Error("expected cached board to be cleared")
	}
	err := f.svc.Place(ctx, gameID, road(0, side(t, 1, -1, 5)))
	if !errors.Is(err, ErrGameFinished) {
		t.Errorf("expected ErrGameFinished, got %v", err)
	}
	if err := f.svc.FinishGame(ctx, "missing"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
	if _, err := f.svc.Summary(ctx, "missing"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
}

func TestRecoverActiveGames(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	for range 3 {
		gameID := f.createGame(t, 2)
		setupOpening(t, f.svc, gameID)
	}

	restarted := f.restart()
	if err := restarted.RecoverActiveGames(ctx); err != nil {
		t.Fatalf("recover: %v", err)
	}
	if n := restarted.ActiveGames(); n != 3 {
		t.Errorf("expected 3 recovered games, got %d", n)
	}
}

func TestConcurrentPlacements(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	gameIDs := make([]string, 4)
	for i := range gameIDs {
		gameIDs[i] = f.createGame(t, 2)
	}

	// A ring of roads around the desert in every game, placed in any order.
	type move struct {
		game string
		pc   hexboard.Piece
	}
	var moves []move
	for gi, gameID := range gameIDs {
		for si := range 6 {
			e := side(t, 0, 0, si)
			moves = append(moves, move{gameID, road(hexboard.PlayerID(gi%2), e)})
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(moves))
	for _, m := range moves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.svc.Place(ctx, m.game, m.pc); err != nil {
				errs <- fmt.Errorf("%s %s: %w", m.game, m.pc, err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	for _, gameID := range gameIDs {
		seq, _ := f.events.LastSeq(ctx, gameID)
		if seq != 6 {
			t.Errorf("game %s: expected seq 6, got %d", gameID, seq)
		}
		b, err := f.svc.Board(ctx, gameID)
		if err != nil {
			t.Fatalf("board: %v", err)
		}
		if err := b.CheckInvariants(); err != nil {
			t.Errorf("game %s: %v", gameID, err)
		}
	}
}
