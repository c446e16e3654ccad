package sqlite

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/freeeve/hexboard/internal/model"
)

// EventRepo handles the placement log.
type EventRepo struct {
	db *gorm.DB
}

// NewEventRepo creates an EventRepo.
func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Append(ctx context.Context, ev model.PieceEvent) error {
	row := eventRow{
		GameID: ev.GameID,
		Seq:    ev.Seq,
		Action: ev.Action,
		Kind:   ev.Kind,
		Owner:  ev.Owner,
		Coord:  ev.Coord,
		Phase:  ev.Phase,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (r *EventRepo) ListByGame(ctx context.Context, gameID string) ([]model.PieceEvent, error) {
	var rows []eventRow
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]model.PieceEvent, len(rows))
	for i, row := range rows {
		events[i] = model.PieceEvent{
			GameID:    row.GameID,
			Seq:       row.Seq,
			Action:    row.Action,
			Kind:      row.Kind,
			Owner:     row.Owner,
			Coord:     row.Coord,
			Phase:     row.Phase,
			CreatedAt: row.CreatedAt,
		}
	}
	return events, nil
}

func (r *EventRepo) LastSeq(ctx context.Context, gameID string) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Model(&eventRow{}).
		Where("game_id = ?", gameID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}
