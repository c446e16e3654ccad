package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexboard/internal/export"
	"github.com/freeeve/hexboard/internal/service"
	"github.com/freeeve/hexboard/pkg/hexboard"
)

// ErrNoOpening is returned when a player has nowhere to put an opening
// settlement.
var ErrNoOpening = errors.New("no legal opening placement")

// ArenaConfig configures a single bot-vs-bot game.
type ArenaConfig struct {
	GameName       string
	Layout         string   // default "standard"
	Players        int      // default len(Strategies), or 4
	Strategies     []string // difficulty per seat, "easy" when missing
	MaxTurns       int      // cap on play turns (default 200)
	TargetVP       int      // first player to reach this wins (default 10)
	Seed           uint64   // 0 = random
	RecordFeatures bool     // collect a FeatureRow per move
}

// ArenaResult describes the outcome of a completed arena game.
type ArenaResult struct {
	GameID        string
	Winner        hexboard.PlayerID // NoPlayer when nobody reached the target
	Turns         int
	VictoryPoints []int
	RouteHolder   hexboard.PlayerID
	RouteLength   int
	Rows          []export.FeatureRow
}

type arena struct {
	svc    *service.BoardService
	gameID string
	cfg    ArenaConfig
	seats  []Strategy
	seq    int64
	rows   []export.FeatureRow
}

func (cfg *ArenaConfig) defaults() {
	if cfg.Layout == "" {
		cfg.Layout = "standard"
	}
	if cfg.Players == 0 {
		cfg.Players = len(cfg.Strategies)
		if cfg.Players == 0 {
			cfg.Players = 4
		}
	}
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = 200
	}
	if cfg.TargetVP == 0 {
		cfg.TargetVP = 10
	}
	if cfg.GameName == "" {
		cfg.GameName = fmt.Sprintf("arena-%d", time.Now().UnixNano())
	}
}

// RunGame plays a full game between bot strategies through the board
// service, so every placement is logged and cached like a live game.
func RunGame(ctx context.Context, svc *service.BoardService, cfg ArenaConfig) (*ArenaResult, error) {
	cfg.defaults()
	if cfg.Seed != 0 {
		SeedBotRng(cfg.Seed)
		defer ResetBotRng()
	}

	a := &arena{svc: svc, cfg: cfg}
	for i := range cfg.Players {
		diff := "easy"
		if i < len(cfg.Strategies) && cfg.Strategies[i] != "" {
			diff = cfg.Strategies[i]
		}
		a.seats = append(a.seats, StrategyForDifficulty(diff))
	}

	game, err := svc.CreateGame(ctx, cfg.GameName, cfg.Layout, cfg.Players)
	if err != nil {
		return nil, fmt.Errorf("create arena game: %w", err)
	}
	a.gameID = game.ID
	start := time.Now()

	if err := a.opening(ctx); err != nil {
		return nil, err
	}
	turns, err := a.play(ctx)
	if err != nil {
		return nil, err
	}

	result, err := a.result(ctx, turns)
	if err != nil {
		return nil, err
	}
	if err := svc.FinishGame(ctx, a.gameID); err != nil {
		return nil, fmt.Errorf("finish arena game: %w", err)
	}

	log.Info().
		Str("gameId", a.gameID).
		Int("winner", int(result.Winner)).
		Int("turns", turns).
		Ints("vp", result.VictoryPoints).
		Dur("elapsed", time.Since(start)).
		Msg("Arena game complete")
	return result, nil
}

// opening runs both initial placement rounds: seat order, then reversed.
func (a *arena) opening(ctx context.Context) error {
	order := make([]hexboard.PlayerID, a.cfg.Players)
	for i := range order {
		order[i] = hexboard.PlayerID(i)
	}
	for _, phase := range []hexboard.Phase{hexboard.PhaseInitialFirst, hexboard.PhaseInitialSecond} {
		if phase == hexboard.PhaseInitialSecond {
			slices.Reverse(order)
			if err := a.svc.SetPhase(ctx, a.gameID, phase); err != nil {
				return fmt.Errorf("set phase %s: %w", phase, err)
			}
		}
		for _, p := range order {
			b, err := a.svc.Board(ctx, a.gameID)
			if err != nil {
				return err
			}
			settlement, route, ok := a.seats[p].PlaceInitial(b, p)
			if !ok {
				return fmt.Errorf("player %d: %w", p, ErrNoOpening)
			}
			if err := a.place(ctx, b, p, settlement); err != nil {
				return err
			}
			b, err = a.svc.Board(ctx, a.gameID)
			if err != nil {
				return err
			}
			if err := a.place(ctx, b, p, route); err != nil {
				return err
			}
		}
	}
	return a.svc.SetPhase(ctx, a.gameID, hexboard.PhasePlay)
}

// play gives each seat one placement per turn until someone reaches the
// target, the turn cap is hit, or a full round passes with no moves.
func (a *arena) play(ctx context.Context) (int, error) {
	passes := 0
	turn := 0
	for ; turn < a.cfg.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return turn, err
		}
		p := hexboard.PlayerID(turn % a.cfg.Players)
		b, err := a.svc.Board(ctx, a.gameID)
		if err != nil {
			return turn, err
		}
		move, ok := a.seats[p].ChooseMove(b, p)
		if !ok {
			passes++
			if passes >= a.cfg.Players {
				log.Debug().Str("gameId", a.gameID).Int("turn", turn).Msg("No moves left")
				break
			}
			continue
		}
		passes = 0
		if err := a.place(ctx, b, p, move); err != nil {
			return turn, err
		}
		ps, err := a.svc.Board(ctx, a.gameID)
		if err != nil {
			return turn, err
		}
		if st, _ := ps.Player(p); st.VictoryPoints() >= a.cfg.TargetVP {
			return turn + 1, nil
		}
	}
	return turn, nil
}

// place records the pre-move features when enabled, then applies the move.
func (a *arena) place(ctx context.Context, before *hexboard.Board, p hexboard.PlayerID, pc hexboard.Piece) error {
	a.seq++
	if a.cfg.RecordFeatures {
		row, err := export.NewRow(a.gameID, a.seq, before, p, pc)
		if err != nil {
			return fmt.Errorf("encode features: %w", err)
		}
		a.rows = append(a.rows, row)
	}
	if err := a.svc.Place(ctx, a.gameID, pc); err != nil {
		return fmt.Errorf("player %d place %s: %w", p, pc, err)
	}
	return nil
}

func (a *arena) result(ctx context.Context, turns int) (*ArenaResult, error) {
	sum, err := a.svc.Summary(ctx, a.gameID)
	if err != nil {
		return nil, err
	}
	res := &ArenaResult{
		GameID:      a.gameID,
		Winner:      hexboard.NoPlayer,
		Turns:       turns,
		RouteHolder: sum.RouteHolder,
		RouteLength: sum.RouteLength,
	}
	best := -1
	for _, ps := range sum.Players {
		res.VictoryPoints = append(res.VictoryPoints, ps.VictoryPoints)
		if ps.VictoryPoints >= a.cfg.TargetVP && ps.VictoryPoints > best {
			res.Winner, best = ps.Player, ps.VictoryPoints
		}
	}
	for i := range a.rows {
		a.rows[i].FinalVP = int32(res.VictoryPoints[a.rows[i].Player])
	}
	res.Rows = a.rows
	return res, nil
}
