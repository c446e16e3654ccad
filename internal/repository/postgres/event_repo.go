package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/hexboard/internal/model"
)

// EventRepo handles the placement log.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo creates an EventRepo.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Append inserts one event. The (game_id, seq) key rejects duplicates.
func (r *EventRepo) Append(ctx context.Context, ev model.PieceEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO piece_events (game_id, seq, action, kind, owner, coord, phase)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ev.GameID, ev.Seq, ev.Action, ev.Kind, ev.Owner, ev.Coord, ev.Phase)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListByGame returns a game's events in sequence order.
func (r *EventRepo) ListByGame(ctx context.Context, gameID string) ([]model.PieceEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, seq, action, kind, owner, coord, phase, created_at
		 FROM piece_events WHERE game_id = $1 ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.PieceEvent
	for rows.Next() {
		var ev model.PieceEvent
		if err := rows.Scan(&ev.GameID, &ev.Seq, &ev.Action, &ev.Kind, &ev.Owner, &ev.Coord, &ev.Phase, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// LastSeq returns the highest sequence number logged for a game, 0 if none.
func (r *EventRepo) LastSeq(ctx context.Context, gameID string) (int64, error) {
	var seq sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM piece_events WHERE game_id = $1`, gameID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}
