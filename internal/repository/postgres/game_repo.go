package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freeeve/hexboard/internal/model"
)

// GameRepo handles board game records.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

const gameColumns = `id, name, layout, players, phase, status, created_at, updated_at`

func scanGame(row interface{ Scan(...any) error }, g *model.Game) error {
	return row.Scan(&g.ID, &g.Name, &g.Layout, &g.Players, &g.Phase, &g.Status, &g.CreatedAt, &g.UpdatedAt)
}

// Create inserts a new active game.
func (r *GameRepo) Create(ctx context.Context, name, layout string, players int, phase string) (*model.Game, error) {
	var g model.Game
	err := scanGame(r.db.QueryRowContext(ctx,
		`INSERT INTO games (name, layout, players, phase)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+gameColumns,
		name, layout, players, phase,
	), &g)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return &g, nil
}

// FindByID returns a game by ID, or nil if it does not exist.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var g model.Game
	err := scanGame(r.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1`, id), &g)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	return &g, nil
}

// ListActive returns active games, oldest first.
func (r *GameRepo) ListActive(ctx context.Context) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE status = $1 ORDER BY created_at`, model.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		if err := scanGame(rows, &g); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// UpdatePhase records the game's current phase.
func (r *GameRepo) UpdatePhase(ctx context.Context, id, phase string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET phase = $2, updated_at = now() WHERE id = $1`, id, phase)
	if err != nil {
		return fmt.Errorf("update phase: %w", err)
	}
	return nil
}

// SetFinished marks a game finished.
func (r *GameRepo) SetFinished(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = $2, updated_at = now() WHERE id = $1`, id, model.StatusFinished)
	if err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	return nil
}

// Delete removes a game and its placement log.
func (r *GameRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}
