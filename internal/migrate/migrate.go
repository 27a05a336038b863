// Package migrate upgrades stored issue records to the current schema.
//
// Early stores lacked the priority, tags, parent, children and is_open
// fields. Records are decoded with those fields optional and Upgrade fills
// in the defaults once, at load time, so the rest of the code never checks
// for missing data.
package migrate

import (
	"fmt"
	"slices"
	"time"

	"github.com/zulandar/track/internal/models"
)

// CurrentVersion is the schema version written by this build.
//
//	0: id, hashes, message, created_at, status
//	1: + priority, tags
//	2: + parent, children, is_open
const CurrentVersion = 2

// Record is the on-disk form of one issue.
type Record struct {
	ID               int       `yaml:"id"`
	CommitHash       string    `yaml:"commit_hash"`
	ClosedCommitHash string    `yaml:"closed_commit_hash,omitempty"`
	Message          string    `yaml:"message"`
	CreatedAt        time.Time `yaml:"created_at"`
	Status           string    `yaml:"status"`
	IsOpen           *bool     `yaml:"is_open,omitempty"`
	Priority         *int      `yaml:"priority,omitempty"`
	Tags             []string  `yaml:"tags,omitempty"`
	Parent           *int      `yaml:"parent,omitempty"`
	Children         []int     `yaml:"children,omitempty"`
}

// Snapshot is the whole persisted store.
type Snapshot struct {
	Version int      `yaml:"version"`
	MaxID   int      `yaml:"max_id"`
	Issues  []Record `yaml:"issues"`
}

// Result is an upgraded snapshot.
type Result struct {
	Issues map[int]*models.Issue
	MaxID  int
	// Repaired counts hierarchy links that were dropped or rebuilt.
	Repaired int
}

// UpgradeRecord converts one record to an Issue, backfilling absent fields.
func UpgradeRecord(r Record) *models.Issue {
	issue := &models.Issue{
		ID:               r.ID,
		CommitHash:       r.CommitHash,
		ClosedCommitHash: r.ClosedCommitHash,
		Message:          r.Message,
		CreatedAt:        r.CreatedAt,
		Priority:         models.DefaultPriority,
		Tags:             []string{},
	}

	status := r.Status
	if status == "" {
		status = models.StatusOpen
	}
	issue.SetStatus(status)
	if issue.IsOpen {
		issue.ClosedCommitHash = ""
	}

	if r.Priority != nil {
		issue.Priority = models.ClampPriority(*r.Priority)
	}
	if r.Tags != nil {
		issue.Tags = slices.Clone(r.Tags)
	}
	if r.Parent != nil {
		issue.Parent = *r.Parent
	}
	issue.Children = normalizeChildren(r.Children, r.ID)
	return issue
}

// normalizeChildren returns ids sorted, deduplicated and without self.
func normalizeChildren(ids []int, self int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id > 0 && id != self {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Upgrade converts a snapshot of any version to current issues. Parent
// pointers are authoritative: dangling parents are cleared and every
// children set is rebuilt from them.
func Upgrade(s *Snapshot) (*Result, error) {
	if s == nil {
		s = &Snapshot{}
	}
	if s.Version > CurrentVersion {
		return nil, fmt.Errorf("migrate: store version %d is newer than supported version %d", s.Version, CurrentVersion)
	}

	res := &Result{
		Issues: make(map[int]*models.Issue, len(s.Issues)),
		MaxID:  s.MaxID,
	}
	for _, r := range s.Issues {
		if r.ID <= 0 {
			return nil, fmt.Errorf("migrate: invalid issue id %d", r.ID)
		}
		if _, dup := res.Issues[r.ID]; dup {
			return nil, fmt.Errorf("migrate: duplicate issue id %d", r.ID)
		}
		if !models.ValidStatus(r.Status) && r.Status != "" {
			return nil, fmt.Errorf("migrate: issue %d has unknown status %q", r.ID, r.Status)
		}
		res.Issues[r.ID] = UpgradeRecord(r)
		res.MaxID = max(res.MaxID, r.ID)
	}

	res.Repaired = relink(res.Issues)
	return res, nil
}

// relink rebuilds children sets from parent pointers and returns the number
// of links that changed.
func relink(issues map[int]*models.Issue) int {
	want := make(map[int][]int, len(issues))
	repaired := 0
	for id, issue := range issues {
		if issue.Parent == 0 {
			continue
		}
		if _, ok := issues[issue.Parent]; !ok || issue.Parent == id {
			issue.Parent = 0
			repaired++
			continue
		}
		want[issue.Parent] = append(want[issue.Parent], id)
	}
	for id, issue := range issues {
		children := want[id]
		slices.Sort(children)
		if !slices.Equal(children, issue.Children) {
			repaired++
		}
		if children == nil {
			children = []int{}
		}
		issue.Children = children
	}
	return repaired
}

// FromIssue converts an issue to its current-version record.
func FromIssue(i *models.Issue) Record {
	isOpen := i.IsOpen
	priority := i.Priority
	parent := i.Parent
	return Record{
		ID:               i.ID,
		CommitHash:       i.CommitHash,
		ClosedCommitHash: i.ClosedCommitHash,
		Message:          i.Message,
		CreatedAt:        i.CreatedAt,
		Status:           i.Status,
		IsOpen:           &isOpen,
		Priority:         &priority,
		Tags:             slices.Clone(i.Tags),
		Parent:           &parent,
		Children:         slices.Clone(i.Children),
	}
}

// Build produces a current-version snapshot ordered by id.
func Build(issues map[int]*models.Issue, maxID int) *Snapshot {
	s := &Snapshot{
		Version: CurrentVersion,
		MaxID:   maxID,
		Issues:  make([]Record, 0, len(issues)),
	}
	ids := make([]int, 0, len(issues))
	for id := range issues {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		s.Issues = append(s.Issues, FromIssue(issues[id]))
	}
	return s
}
