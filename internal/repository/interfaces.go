package repository

import (
	"context"
	"encoding/json"

	"github.com/freeeve/hexboard/internal/model"
)

// GameRepository defines game record operations.
type GameRepository interface {
	Create(ctx context.Context, name, layout string, players int, phase string) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	UpdatePhase(ctx context.Context, id, phase string) error
	SetFinished(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// EventRepository defines the append-only placement log.
type EventRepository interface {
	Append(ctx context.Context, ev model.PieceEvent) error
	ListByGame(ctx context.Context, gameID string) ([]model.PieceEvent, error)
	LastSeq(ctx context.Context, gameID string) (int64, error)
}

// BoardCache defines live board state operations (Redis).
type BoardCache interface {
	SetSnapshot(ctx context.Context, gameID string, snapshot json.RawMessage) error
	GetSnapshot(ctx context.Context, gameID string) (json.RawMessage, error)
	SetRouteLengths(ctx context.Context, gameID string, scores []model.RouteScore) error
	RouteLeaders(ctx context.Context, gameID string) ([]model.RouteScore, error)
	DeleteGameData(ctx context.Context, gameID string) error
}
