package models

import "time"

// IssueRow is the SQLite form of an issue. Columns that older stores did not
// have are pointers so a NULL can be told apart from a stored zero.
type IssueRow struct {
	ID               int    `gorm:"primaryKey;autoIncrement:false"`
	CommitHash       string `gorm:"size:40"`
	ClosedCommitHash string `gorm:"size:40"`
	Message          string `gorm:"type:text"`
	CreatedAt        time.Time
	Status           string   `gorm:"size:16;index"`
	IsOpen           *bool    `gorm:"column:is_open"`
	Priority         *int     `gorm:"column:priority"`
	Tags             []string `gorm:"serializer:json"`
	Parent           *int     `gorm:"column:parent;index"`
	Children         []int    `gorm:"serializer:json"`
}

// TableName pins the table name independent of the struct name.
func (IssueRow) TableName() string { return "issues" }

// StoreMeta is the single-row table holding the schema version and the id
// high-water mark.
type StoreMeta struct {
	ID      uint `gorm:"primaryKey"`
	Version int
	MaxID   int
}

// TableName pins the table name independent of the struct name.
func (StoreMeta) TableName() string { return "store_meta" }
