// Package models holds the issue record and its persisted row forms.
package models

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Issue statuses.
const (
	StatusOpen    = "open"
	StatusClosed  = "closed"
	StatusWontfix = "wontfix"
)

// Priority bounds. Out-of-range input is clamped, never rejected.
const (
	MinPriority     = 0
	MaxPriority     = 5
	DefaultPriority = 3
)

// Issue is one tracked issue.
type Issue struct {
	ID               int
	CommitHash       string
	ClosedCommitHash string
	Message          string
	CreatedAt        time.Time
	Status           string
	IsOpen           bool
	Priority         int
	Tags             []string
	Parent           int
	Children         []int
}

// ClampPriority forces p into [MinPriority, MaxPriority].
func ClampPriority(p int) int {
	return min(max(p, MinPriority), MaxPriority)
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusClosed, StatusWontfix:
		return true
	}
	return false
}

// Summary returns the first line of the message.
func (i *Issue) Summary() string {
	line, _, _ := strings.Cut(i.Message, "\n")
	return strings.TrimRight(line, "\r")
}

// SetStatus updates Status and keeps IsOpen in step with it.
func (i *Issue) SetStatus(status string) {
	i.Status = status
	i.IsOpen = status == StatusOpen
}

// HasTag reports whether tag is present at least once.
func (i *Issue) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// HasChild reports whether id is a direct child.
func (i *Issue) HasChild(id int) bool {
	_, found := slices.BinarySearch(i.Children, id)
	return found
}

// AddChild inserts id into the sorted children set.
func (i *Issue) AddChild(id int) {
	pos, found := slices.BinarySearch(i.Children, id)
	if found {
		return
	}
	i.Children = slices.Insert(i.Children, pos, id)
}

// RemoveChild deletes id from the children set if present.
func (i *Issue) RemoveChild(id int) {
	pos, found := slices.BinarySearch(i.Children, id)
	if !found {
		return
	}
	i.Children = slices.Delete(i.Children, pos, pos+1)
}

// Clone returns a deep copy.
func (i *Issue) Clone() *Issue {
	c := *i
	c.Tags = slices.Clone(i.Tags)
	c.Children = slices.Clone(i.Children)
	return &c
}

// Compare orders issues by priority, then by id. It is the single ordering
// used by every view; callers reverse it where they want highest first.
func Compare(a, b *Issue) int {
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortAscending sorts issues by Compare.
func SortAscending(issues []*Issue) {
	slices.SortFunc(issues, Compare)
}

// SortDescending sorts issues by Compare, highest priority and id first.
func SortDescending(issues []*Issue) {
	slices.SortFunc(issues, func(a, b *Issue) int { return Compare(b, a) })
}
