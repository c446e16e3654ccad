// Package memory keeps games and placement logs in process memory. State is
// lost on exit.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/hexboard/internal/model"
)

// GameRepo is an in-memory GameRepository.
type GameRepo struct {
	mu    sync.RWMutex
	games map[string]model.Game
}

func NewGameRepo() *GameRepo {
	return &GameRepo{games: make(map[string]model.Game)}
}

func (r *GameRepo) Create(_ context.Context, name, layout string, players int, phase string) (*model.Game, error) {
	now := time.Now().UTC()
	g := model.Game{
		ID:        uuid.New().String(),
		Name:      name,
		Layout:    layout,
		Players:   players,
		Phase:     phase,
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.mu.Lock()
	r.games[g.ID] = g
	r.mu.Unlock()
	return &g, nil
}

func (r *GameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *GameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var games []model.Game
	for _, g := range r.games {
		if g.Status == model.StatusActive {
			games = append(games, g)
		}
	}
	slices.SortFunc(games, func(a, b model.Game) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return games, nil
}

func (r *GameRepo) UpdatePhase(_ context.Context, id, phase string) error {
	return r.update(id, func(g *model.Game) { g.Phase = phase })
}

func (r *GameRepo) SetFinished(_ context.Context, id string) error {
	return r.update(id, func(g *model.Game) { g.Status = model.StatusFinished })
}

func (r *GameRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.games, id)
	r.mu.Unlock()
	return nil
}

func (r *GameRepo) update(id string, fn func(*model.Game)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return fmt.Errorf("game %s not found", id)
	}
	fn(&g)
	g.UpdatedAt = time.Now().UTC()
	r.games[id] = g
	return nil
}

// EventRepo is an in-memory EventRepository.
type EventRepo struct {
	mu     sync.RWMutex
	events map[string][]model.PieceEvent
}

func NewEventRepo() *EventRepo {
	return &EventRepo{events: make(map[string][]model.PieceEvent)}
}

// Append requires events to arrive in increasing Seq order per game.
func (r *EventRepo) Append(_ context.Context, ev model.PieceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.events[ev.GameID]
	if n := len(log); n > 0 && log[n-1].Seq >= ev.Seq {
		return fmt.Errorf("append event: seq %d not after %d", ev.Seq, log[n-1].Seq)
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	r.events[ev.GameID] = append(log, ev)
	return nil
}

func (r *EventRepo) ListByGame(_ context.Context, gameID string) ([]model.PieceEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.events[gameID]), nil
}

func (r *EventRepo) LastSeq(_ context.Context, gameID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log := r.events[gameID]
	if len(log) == 0 {
		return 0, nil
	}
	return log[len(log)-1].Seq, nil
}

// DeleteGame drops a game's log.
func (r *EventRepo) DeleteGame(gameID string) {
	r.mu.Lock()
	delete(r.events, gameID)
	r.mu.Unlock()
}
