package db

import (
	"errors"
	"fmt"

	"github.com/zulandar/track/internal/migrate"
	"github.com/zulandar/track/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// metaRowID is the primary key of the single StoreMeta row.
const metaRowID = 1

// Backend keeps the store in the issues and store_meta tables. Each Save
// replaces every row inside one transaction.
type Backend struct {
	db *gorm.DB
}

// NewBackend migrates the schema on db and returns a backend over it.
func NewBackend(db *gorm.DB) (*Backend, error) {
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return &Backend{db: db}, nil
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB { return b.db }

// Load reads every issue row and the store metadata.
func (b *Backend) Load() (*migrate.Snapshot, error) {
	snap := &migrate.Snapshot{}

	var meta models.StoreMeta
	err := b.db.Where("id = ?", metaRowID).First(&meta).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, fmt.Errorf("db: load store meta: %w", err)
	default:
		snap.Version = meta.Version
		snap.MaxID = meta.MaxID
	}

	var rows []models.IssueRow
	if err := b.db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("db: load issues: %w", err)
	}
	snap.Issues = make([]migrate.Record, 0, len(rows))
	for _, r := range rows {
		snap.Issues = append(snap.Issues, recordFromRow(r))
	}
	return snap, nil
}

// Save replaces all stored issues with snap.
func (b *Backend) Save(snap *migrate.Snapshot) error {
	rows := make([]models.IssueRow, 0, len(snap.Issues))
	for _, r := range snap.Issues {
		rows = append(rows, rowFromRecord(r))
	}

	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.IssueRow{}).Error; err != nil {
			return fmt.Errorf("clear issues: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return fmt.Errorf("insert issues: %w", err)
			}
		}
		meta := models.StoreMeta{ID: metaRowID, Version: snap.Version, MaxID: snap.MaxID}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"version", "max_id"}),
		}).Create(&meta)
		if result.Error != nil {
			return fmt.Errorf("write store meta: %w", result.Error)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("db: save: %w", err)
	}
	return nil
}

func recordFromRow(r models.IssueRow) migrate.Record {
	return migrate.Record{
		ID:               r.ID,
		CommitHash:       r.CommitHash,
		ClosedCommitHash: r.ClosedCommitHash,
		Message:          r.Message,
		CreatedAt:        r.CreatedAt,
		Status:           r.Status,
		IsOpen:           r.IsOpen,
		Priority:         r.Priority,
		Tags:             r.Tags,
		Parent:           r.Parent,
		Children:         r.Children,
	}
}

func rowFromRecord(r migrate.Record) models.IssueRow {
	return models.IssueRow{
		ID:               r.ID,
		CommitHash:       r.CommitHash,
		ClosedCommitHash: r.ClosedCommitHash,
		Message:          r.Message,
		CreatedAt:        r.CreatedAt,
		Status:           r.Status,
		IsOpen:           r.IsOpen,
		Priority:         r.Priority,
		Tags:             r.Tags,
		Parent:           r.Parent,
		Children:         r.Children,
	}
}
