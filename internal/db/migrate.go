package db

import (
	"fmt"

	"github.com/zulandar/track/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model the store uses.
func AllModels() []interface{} {
	return []interface{}{
		&models.IssueRow{},
		&models.StoreMeta{},
	}
}

// AutoMigrate creates missing tables and adds missing columns. Columns added
// this way start out NULL and are backfilled when the rows are loaded.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
