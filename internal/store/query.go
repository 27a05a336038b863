package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zulandar/track/internal/models"
)

// Filter selects issues by status for List.
type Filter int

const (
	FilterOpen Filter = iota
	FilterAll
	FilterClosed
)

func (f Filter) String() string {
	switch f {
	case FilterOpen:
		return "open"
	case FilterAll:
		return "all"
	case FilterClosed:
		return "closed"
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

func (f Filter) match(i *models.Issue) bool {
	switch f {
	case FilterAll:
		return true
	case FilterClosed:
		return !i.IsOpen
	}
	return i.IsOpen
}

// List returns the issues matching f, highest priority first and higher ids
// first within a priority.
func (s *Store) List(f Filter) []*models.Issue {
	var out []*models.Issue
	for _, issue := range s.issues {
		if f.match(issue) {
			out = append(out, issue.Clone())
		}
	}
	models.SortDescending(out)
	return out
}

// Search returns issues whose message contains text, ignoring case, and that
// carry tag. An empty text or tag does not filter. Results are ordered by
// ascending id.
func (s *Store) Search(text, tag string) []*models.Issue {
	needle := strings.ToLower(text)
	var out []*models.Issue
	for _, issue := range s.issues {
		if needle != "" && !strings.Contains(strings.ToLower(issue.Message), needle) {
			continue
		}
		if tag != "" && !issue.HasTag(tag) {
			continue
		}
		out = append(out, issue.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Issue) int { return a.ID - b.ID })
	return out
}
