package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freeeve/hexboard/internal/model"
)

// GameRepo handles game records.
type GameRepo struct {
	db *gorm.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *gorm.DB) *GameRepo {
	return &GameRepo{db: db}
}

func (r gameRow) toModel() model.Game {
	return model.Game{
		ID:        r.ID,
		Name:      r.Name,
		Layout:    r.Layout,
		Players:   r.Players,
		Phase:     r.Phase,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r *GameRepo) Create(ctx context.Context, name, layout string, players int, phase string) (*model.Game, error) {
	row := gameRow{
		ID:      uuid.New().String(),
		Name:    name,
		Layout:  layout,
		Players: players,
		Phase:   phase,
		Status:  model.StatusActive,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	g := row.toModel()
	return &g, nil
}

// FindByID returns nil when the game does not exist.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var row gameRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	g := row.toModel()
	return &g, nil
}

func (r *GameRepo) ListActive(ctx context.Context) ([]model.Game, error) {
	var rows []gameRow
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusActive).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	games := make([]model.Game, len(rows))
	for i, row := range rows {
		games[i] = row.toModel()
	}
	return games, nil
}

func (r *GameRepo) UpdatePhase(ctx context.Context, id, phase string) error {
	err := r.db.WithContext(ctx).Model(&gameRow{}).Where("id = ?", id).Update("phase", phase).Error
	if err != nil {
		return fmt.Errorf("update phase: %w", err)
	}
	return nil
}

func (r *GameRepo) SetFinished(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&gameRow{}).Where("id = ?", id).Update("status", model.StatusFinished).Error
	if err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	return nil
}

// Delete removes the game together with its placement log.
func (r *GameRepo) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&eventRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&gameRow{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}
