// Package sqlite stores games and the placement log in an embedded SQLite
// database through gorm.
package sqlite

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryDSN = "file::memory:?cache=shared"

type gameRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:127"`
	Layout    string `gorm:"size:32"`
	Players   int
	Phase     string `gorm:"size:32"`
	Status    string `gorm:"size:16;index:idx_games_status"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (gameRow) TableName() string { return "games" }

type eventRow struct {
	GameID    string `gorm:"primaryKey;size:36"`
	Seq       int64  `gorm:"primaryKey;autoIncrement:false"`
	Action    string `gorm:"size:16"`
	Kind      string `gorm:"size:16"`
	Owner     int
	Coord     int
	Phase     string `gorm:"size:32"`
	CreatedAt time.Time
}

func (eventRow) TableName() string { return "piece_events" }

// Open opens (or creates) the database at path and migrates the schema. An
// empty path opens a shared in-memory database.
func Open(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = memoryDSN
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if err := db.AutoMigrate(&gameRow{}, &eventRow{}); err != nil {
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
