package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexboard/internal/metrics"
	"github.com/freeeve/hexboard/internal/model"
	"github.com/freeeve/hexboard/internal/repository"
	"github.com/freeeve/hexboard/pkg/hexboard"
)

// LongestRouteMinimum is the length a route needs before it counts as the
// longest route.
const LongestRouteMinimum = 5

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameFinished  = errors.New("game is finished")
	ErrUnknownLayout = errors.New("unknown layout")
	ErrInvalidGame   = errors.New("invalid game parameters")
)

// layouts maps a layout name to its topology. Topologies are immutable and
// shared by every game using them.
var layouts = map[string]hexboard.Topology{
	"standard": hexboard.StandardLayout(),
}

// LayoutTopology returns the topology registered under name.
func LayoutTopology(name string) (hexboard.Topology, bool) {
	topo, ok := layouts[name]
	return topo, ok
}

// Options configures a BoardService.
type Options struct {
	Supply          hexboard.Supply
	DebugInvariants bool
	Metrics         *metrics.Recorder
}

// session is one game's live board. Access is serialized by the game lock.
type session struct {
	game    model.Game
	board   *hexboard.Board
	seq     int64
	muted   bool
	pending []hexboard.PlayerEvent
	holder  hexboard.PlayerID
}

func (s *session) listen(ev hexboard.PlayerEvent) {
	if !s.muted {
		s.pending = append(s.pending, ev)
	}
}

// cachedBoard is the snapshot stored in the board cache. Seq identifies the
// last logged event it includes.
type cachedBoard struct {
	Seq    int64                  `json:"seq"`
	Holder hexboard.PlayerID      `json:"holder"`
	Board  hexboard.BoardSnapshot `json:"board"`
}

// BoardService owns the live boards of every game. The placement log is the
// source of truth; the cache and in-memory sessions are rebuilt from it.
type BoardService struct {
	gameRepo    repository.GameRepository
	eventRepo   repository.EventRepository
	cache       repository.BoardCache // optional
	broadcaster Broadcaster
	opts        Options

	mu       sync.RWMutex
	sessions map[string]*session

	// gameLocks serializes operations on the same game.
	gameLocks sync.Map
}

// NewBoardService creates a BoardService. cache and broadcaster may be nil.
func NewBoardService(
	gameRepo repository.GameRepository,
	eventRepo repository.EventRepository,
	cache repository.BoardCache,
	broadcaster Broadcaster,
	opts Options,
) *BoardService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	if opts.Supply == (hexboard.Supply{}) {
		opts.Supply = hexboard.DefaultSupply()
	}
	return &BoardService{
		gameRepo:    gameRepo,
		eventRepo:   eventRepo,
		cache:       cache,
		broadcaster: broadcaster,
		opts:        opts,
		sessions:    make(map[string]*session),
	}
}

// SetMetrics attaches a metrics recorder.
func (s *BoardService) SetMetrics(m *metrics.Recorder) {
	s.opts.Metrics = m
}

func (s *BoardService) gameLock(gameID string) *sync.Mutex {
	v, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// ActiveGames returns the number of boards held in memory.
func (s *BoardService) ActiveGames() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.sessions))
}

// CreateGame registers a new game on the named layout and seats players.
func (s *BoardService) CreateGame(ctx context.Context, name, layout string, players int) (*model.Game, error) {
	topo, ok := layouts[layout]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}
	if players < 1 {
		return nil, fmt.Errorf("%w: %d players", ErrInvalidGame, players)
	}

	game, err := s.gameRepo.Create(ctx, name, layout, players, string(hexboard.PhaseInitialFirst))
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	sess, err := s.newSession(*game, topo)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[game.ID] = sess
	s.mu.Unlock()
	s.persistCache(ctx, sess)

	log.Info().
		Str("gameId", game.ID).
		Str("layout", layout).
		Int("players", players).
		Msg("Game created")
	s.broadcaster.BroadcastGameEvent(game.ID, EventGameCreated, game)
	return game, nil
}

func (s *BoardService) newSession(game model.Game, topo hexboard.Topology) (*session, error) {
	sess := &session{game: game, holder: hexboard.NoPlayer}
	b, err := hexboard.NewBoard(topo, game.Players,
		hexboard.WithSupply(s.opts.Supply),
		hexboard.WithListener(sess.listen))
	if err != nil {
		return nil, fmt.Errorf("new board: %w", err)
	}
	sess.board = b
	return sess, nil
}

// Place puts a piece on a game's board and logs it.
func (s *BoardService) Place(ctx context.Context, gameID string, pc hexboard.Piece) error {
	return s.mutate(ctx, gameID, "place", func(sess *session) (model.PieceEvent, error) {
		if err := sess.board.Place(pc); err != nil {
			return model.PieceEvent{}, err
		}
		s.opts.Metrics.Placed(ctx, string(pc.Kind))
		return pieceEvent(model.ActionPlace, pc), nil
	})
}

// Remove takes a piece off a game's board and logs it.
func (s *BoardService) Remove(ctx context.Context, gameID string, pc hexboard.Piece) error {
	return s.mutate(ctx, gameID, "remove", func(sess *session) (model.PieceEvent, error) {
		if err := sess.board.Remove(pc); err != nil {
			return model.PieceEvent{}, err
		}
		s.opts.Metrics.Removed(ctx, string(pc.Kind))
		return pieceEvent(model.ActionRemove, pc), nil
	})
}

// SetPhase moves a game to another placement phase.
func (s *BoardService) SetPhase(ctx context.Context, gameID string, phase hexboard.Phase) error {
	if _, err := hexboard.ParsePhase(string(phase)); err != nil {
		return fmt.Errorf("set phase: %w", err)
	}
	return s.mutate(ctx, gameID, "phase", func(sess *session) (model.PieceEvent, error) {
		sess.board.SetPhase(phase)
		return model.PieceEvent{
			Action: model.ActionPhase,
			Owner:  int(hexboard.NoPlayer),
			Coord:  -1,
			Phase:  string(phase),
		}, nil
	})
}

func pieceEvent(action string, pc hexboard.Piece) model.PieceEvent {
	return model.PieceEvent{
		Action: action,
		Kind:   string(pc.Kind),
		Owner:  int(pc.Owner),
		Coord:  pc.Coord,
	}
}

// mutate runs apply under the game lock, then logs, caches and broadcasts
// the result. A board whose change could not be logged is evicted so the
// next access rebuilds it from the log.
func (s *BoardService) mutate(ctx context.Context, gameID, op string, apply func(*session) (model.PieceEvent, error)) error {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	if sess.game.Status == model.StatusFinished {
		return fmt.Errorf("%s: %w", op, ErrGameFinished)
	}

	sess.pending = sess.pending[:0]
	ev, err := apply(sess)
	if err != nil {
		s.opts.Metrics.Rejected(ctx, op, rejectReason(err))
		log.Warn().Err(err).Str("gameId", gameID).Str("op", op).Msg("Board operation rejected")
		return err
	}

	ev.GameID = gameID
	ev.Seq = sess.seq + 1
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.evict(gameID)
		return fmt.Errorf("%s: append event: %w", op, err)
	}
	sess.seq = ev.Seq
	if ev.Action == model.ActionPhase {
		s.syncPhase(ctx, sess)
	}

	if s.opts.DebugInvariants {
		if err := sess.board.CheckInvariants(); err != nil {
			log.Error().Err(err).Str("gameId", gameID).Int64("seq", ev.Seq).Msg("Board invariants violated")
			s.evict(gameID)
			return err
		}
	}

	s.updateRoutes(ctx, sess, ev)
	s.persistCache(ctx, sess)

	log.Debug().
		Str("gameId", gameID).
		Int64("seq", ev.Seq).
		Str("action", ev.Action).
		Str("kind", ev.Kind).
		Int("owner", ev.Owner).
		Int("coord", ev.Coord).
		Msg("Board updated")

	s.broadcaster.BroadcastGameEvent(gameID, broadcastType(ev.Action), ev)
	for _, pe := range sess.pending {
		log.Info().
			Str("gameId", gameID).
			Int("player", int(pe.Player)).
			Int("area", pe.Area).
			Bool("first", pe.First).
			Msg("Player settled a new region")
		s.broadcaster.BroadcastGameEvent(gameID, EventRegionSettled, pe)
	}
	sess.pending = sess.pending[:0]
	return nil
}

func broadcastType(action string) string {
	switch action {
	case model.ActionPlace:
		return EventPiecePlaced
	case model.ActionRemove:
		return EventPieceRemoved
	}
	return EventPhaseChanged
}

func rejectReason(err error) string {
	for _, e := range []error{
		hexboard.ErrInvalidCoordinate,
		hexboard.ErrIllegalPlacement,
		hexboard.ErrInconsistentRemoval,
		hexboard.ErrUnknownPlayer,
		hexboard.ErrNoPiecesLeft,
	} {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return "other"
}

// updateRoutes re-evaluates the longest-route holder and publishes route
// lengths after a change that can move them.
func (s *BoardService) updateRoutes(ctx context.Context, sess *session, ev model.PieceEvent) {
	if ev.Action == model.ActionPhase {
		return
	}
	sess.holder, _ = sess.board.LongestRoute(LongestRouteMinimum, sess.holder)
	if kind := hexboard.PieceKind(ev.Kind); kind.OnEdge() {
		p, err := sess.board.Player(hexboard.PlayerID(ev.Owner))
		if err == nil {
			s.opts.Metrics.RouteLength(ctx, p.LongestRouteLength())
		}
	}
	if s.cache == nil {
		return
	}
	if err := s.cache.SetRouteLengths(ctx, sess.game.ID, routeScores(sess.board)); err != nil {
		log.Warn().Err(err).Str("gameId", sess.game.ID).Msg("Failed to cache route lengths")
	}
}

func routeScores(b *hexboard.Board) []model.RouteScore {
	players := b.Players()
	scores := make([]model.RouteScore, len(players))
	for i, p := range players {
		scores[i] = model.RouteScore{Player: int(p.ID()), Length: p.LongestRouteLength()}
	}
	return scores
}

// persistCache stores the session snapshot. Cache failures are logged, not
// returned: the log can always rebuild the board.
func (s *BoardService) persistCache(ctx context.Context, sess *session) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(cachedBoard{Seq: sess.seq, Holder: sess.holder, Board: sess.board.Snapshot()})
	if err != nil {
		log.Error().Err(err).Str("gameId", sess.game.ID).Msg("Failed to marshal board snapshot")
		return
	}
	if err := s.cache.SetSnapshot(ctx, sess.game.ID, data); err != nil {
		log.Warn().Err(err).Str("gameId", sess.game.ID).Msg("Failed to cache board snapshot")
	}
}

func (s *BoardService) evict(gameID string) {
	s.mu.Lock()
	delete(s.sessions, gameID)
	s.mu.Unlock()
}

// load returns the live session for a game, rebuilding it from the cache or
// the placement log if it is not in memory. Callers hold the game lock.
func (s *BoardService) load(ctx context.Context, gameID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[gameID]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	topo, ok := layouts[game.Layout]
	if !ok {
		return nil, fmt.Errorf("game %s: %w: %q", gameID, ErrUnknownLayout, game.Layout)
	}
	lastSeq, err := s.eventRepo.LastSeq(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("last seq: %w", err)
	}

	sess = s.restoreFromCache(ctx, *game, topo, lastSeq)
	if sess == nil {
		sess, err = s.replay(ctx, *game, topo)
		if err != nil {
			return nil, err
		}
		s.persistCache(ctx, sess)
	}
	s.syncPhase(ctx, sess)

	s.mu.Lock()
	s.sessions[gameID] = sess
	s.mu.Unlock()
	return sess, nil
}

// syncPhase brings the game record's phase in line with the board, which
// follows the log. A failed update is retried on the next load.
func (s *BoardService) syncPhase(ctx context.Context, sess *session) {
	phase := string(sess.board.Phase())
	if sess.game.Phase == phase {
		return
	}
	if err := s.gameRepo.UpdatePhase(ctx, sess.game.ID, phase); err != nil {
		log.Warn().Err(err).Str("gameId", sess.game.ID).Str("phase", phase).Msg("Failed to update game phase")
		return
	}
	sess.game.Phase = phase
}

// restoreFromCache returns nil when no usable snapshot is cached.
func (s *BoardService) restoreFromCache(ctx context.Context, game model.Game, topo hexboard.Topology, lastSeq int64) *session {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.GetSnapshot(ctx, game.ID)
	if err != nil {
		log.Warn().Err(err).Str("gameId", game.ID).Msg("Failed to read cached board")
		return nil
	}
	if data == nil {
		return nil
	}
	var cached cachedBoard
	if err := json.Unmarshal(data, &cached); err != nil {
		log.Warn().Err(err).Str("gameId", game.ID).Msg("Discarding unreadable cached board")
		return nil
	}
	if cached.Seq != lastSeq {
		log.Info().
			Str("gameId", game.ID).
			Int64("cachedSeq", cached.Seq).
			Int64("lastSeq", lastSeq).
			Msg("Cached board is stale, replaying log")
		return nil
	}

	sess := &session{game: game, seq: cached.Seq, holder: cached.Holder}
	b, err := hexboard.RestoreBoard(topo, cached.Board, hexboard.WithListener(sess.listen))
	if err != nil {
		log.Warn().Err(err).Str("gameId", game.ID).Msg("Cached board does not restore, replaying log")
		return nil
	}
	sess.board = b
	log.Debug().Str("gameId", game.ID).Int64("seq", sess.seq).Msg("Board restored from cache")
	return sess
}

// replay rebuilds a game's board by applying its whole placement log.
func (s *BoardService) replay(ctx context.Context, game model.Game, topo hexboard.Topology) (*session, error) {
	events, err := s.eventRepo.ListByGame(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	sess, err := s.newSession(game, topo)
	if err != nil {
		return nil, err
	}

	sess.muted = true
	defer func() { sess.muted = false }()
	for _, ev := range events {
		if err := applyEvent(sess.board, ev); err != nil {
			return nil, fmt.Errorf("replay game %s seq %d: %w", game.ID, ev.Seq, err)
		}
		if ev.Action != model.ActionPhase {
			sess.holder, _ = sess.board.LongestRoute(LongestRouteMinimum, sess.holder)
		}
		sess.seq = ev.Seq
	}
	log.Info().Str("gameId", game.ID).Int("events", len(events)).Msg("Board replayed from log")
	return sess, nil
}

func applyEvent(b *hexboard.Board, ev model.PieceEvent) error {
	if ev.Action == model.ActionPhase {
		phase, err := hexboard.ParsePhase(ev.Phase)
		if err != nil {
			return err
		}
		b.SetPhase(phase)
		return nil
	}
	kind, err := hexboard.ParsePieceKind(ev.Kind)
	if err != nil {
		return err
	}
	pc := hexboard.Piece{Kind: kind, Owner: hexboard.PlayerID(ev.Owner), Coord: ev.Coord}
	switch ev.Action {
	case model.ActionPlace:
		return b.Place(pc)
	case model.ActionRemove:
		return b.Remove(pc)
	}
	return fmt.Errorf("unknown action %q", ev.Action)
}

// Snapshot returns a serializable copy of a game's board.
func (s *BoardService) Snapshot(ctx context.Context, gameID string) (hexboard.BoardSnapshot, error) {
	var snap hexboard.BoardSnapshot
	err := s.withBoard(ctx, gameID, func(sess *session) error {
		snap = sess.board.Snapshot()
		return nil
	})
	return snap, err
}

// Board returns an independent copy of a game's board for read-only queries.
func (s *BoardService) Board(ctx context.Context, gameID string) (*hexboard.Board, error) {
	var b *hexboard.Board
	err := s.withBoard(ctx, gameID, func(sess *session) error {
		b = sess.board.Clone()
		return nil
	})
	return b, err
}

func (s *BoardService) withBoard(ctx context.Context, gameID string, fn func(*session) error) error {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()
	sess, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	return fn(sess)
}

// FinishGame marks a game finished and drops its live state.
func (s *BoardService) FinishGame(ctx context.Context, gameID string) error {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("find game: %w", err)
	}
	if game == nil {
		return ErrGameNotFound
	}
	if err := s.gameRepo.SetFinished(ctx, gameID); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	s.evict(gameID)
	if s.cache != nil {
		if err := s.cache.DeleteGameData(ctx, gameID); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to clear cached board")
		}
	}
	log.Info().Str("gameId", gameID).Msg("Game finished")
	s.broadcaster.BroadcastGameEvent(gameID, EventGameFinished, nil)
	return nil
}

// RecoverActiveGames loads every active game so the first request after a
// restart does not pay for the replay. Games that fail to load are skipped.
func (s *BoardService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	if len(games) == 0 {
		log.Info().Msg("No active games to recover")
		return nil
	}
	log.Info().Int("count", len(games)).Msg("Recovering active games")
	for _, g := range games {
		if err := s.withBoard(ctx, g.ID, func(*session) error { return nil }); err != nil {
			log.Error().Err(err).Str("gameId", g.ID).Msg("Failed to recover game")
		}
	}
	return nil
}
