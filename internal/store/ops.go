package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/zulandar/track/internal/models"
)

// Add creates an open issue at HEAD and returns it. The priority is clamped
// to the valid range. A blank message fails with ErrEmptyMessage before any
// id is allocated.
func (s *Store) Add(ctx context.Context, priority int, tags []string, message string) (*models.Issue, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("store: add: %w", ErrEmptyMessage)
	}
	hash, err := s.revs.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: add: %w", err)
	}

	var created *models.Issue
	err = s.update(func(st *state) error {
		id := st.maxID + 1
		issue := &models.Issue{
			ID:         id,
			CommitHash: hash,
			Message:    message,
			CreatedAt:  s.now(),
			Priority:   models.ClampPriority(priority),
			Tags:       cleanTags(tags),
			Children:   []int{},
		}
		issue.SetStatus(models.StatusOpen)
		st.issues[id] = issue
		st.maxID = id
		created = issue.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Close marks an issue closed, or wontfix, at HEAD. Every direct child must
// already be closed.
func (s *Store) Close(ctx context.Context, id int, wontfix bool) error {
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}

		var open []string
		for _, c := range issue.Children {
			if child, ok := st.issues[c]; ok && child.IsOpen {
				open = append(open, fmt.Sprintf("%03d", c))
			}
		}
		if len(open) > 0 {
			return fmt.Errorf("store: close %d: %w (open: %s)", id, ErrBlockedByOpenChildren, strings.Join(open, ", "))
		}

		hash, err := s.revs.Head(ctx)
		if err != nil {
			return fmt.Errorf("store: close %d: %w", id, err)
		}

		status := models.StatusClosed
		if wontfix {
			status = models.StatusWontfix
		}
		issue.SetStatus(status)
		issue.ClosedCommitHash = hash
		return nil
	})
}

// Reopen returns a closed issue to open and clears its closing revision.
func (s *Store) Reopen(id int) error {
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}
		if issue.IsOpen {
			return errUnchanged
		}
		issue.SetStatus(models.StatusOpen)
		issue.ClosedCommitHash = ""
		return nil
	})
}

// Rebase moves an issue's opening revision to the current HEAD.
func (s *Store) Rebase(ctx context.Context, id int) error {
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}
		hash, err := s.revs.Head(ctx)
		if err != nil {
			return fmt.Errorf("store: rebase %d: %w", id, err)
		}
		issue.CommitHash = hash
		return nil
	})
}

// Remove deletes an issue. Its children move up to its own parent, or
// become roots, so no descendant is lost.
func (s *Store) Remove(id int) error {
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}

		grandparent := st.issues[issue.Parent]
		if grandparent != nil {
			grandparent.RemoveChild(id)
		}
		for _, c := range issue.Children {
			child, ok := st.issues[c]
			if !ok {
				continue
			}
			child.Parent = issue.Parent
			if grandparent != nil {
				grandparent.AddChild(c)
			}
		}
		delete(st.issues, id)
		return nil
	})
}

// SetPriority stores a new, clamped priority.
func (s *Store) SetPriority(id, priority int) error {
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}
		issue.Priority = models.ClampPriority(priority)
		return nil
	})
}

// AddTag appends tag. Duplicates are kept.
func (s *Store) AddTag(id int, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("store: add tag to %d: %w: empty tag", id, ErrInvalidInput)
	}
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}
		issue.Tags = append(issue.Tags, tag)
		return nil
	})
}

// RemoveTag deletes the first occurrence of tag.
func (s *Store) RemoveTag(id int, tag string) error {
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}
		pos := slices.Index(issue.Tags, tag)
		if pos < 0 {
			return fmt.Errorf("store: issue %d tag %q: %w", id, tag, ErrTagNotFound)
		}
		issue.Tags = slices.Delete(issue.Tags, pos, pos+1)
		return nil
	})
}

// SetMessage replaces the message text.
func (s *Store) SetMessage(id int, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("store: edit %d: %w", id, ErrEmptyMessage)
	}
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}
		issue.Message = message
		return nil
	})
}

// Attach makes parentID the parent of id, moving it from any previous parent
// in the same write. A parentID of 0 detaches. Attaching to the current
// parent is a no-op; attaching below itself fails with ErrCycle.
func (s *Store) Attach(id, parentID int) error {
	if parentID == 0 {
		return s.Detach(id)
	}
	if parentID < 0 {
		return fmt.Errorf("store: attach %d: %w: parent id %d", id, ErrInvalidInput, parentID)
	}
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}
		if issue.Parent == parentID {
			return errUnchanged
		}
		parent, ok := st.issues[parentID]
		if !ok {
			return fmt.Errorf("store: attach %d: parent %d: %w", id, parentID, ErrNotFound)
		}
		if parentID == id || st.isAncestor(id, parentID) {
			return fmt.Errorf("store: attach %d to %d: %w", id, parentID, ErrCycle)
		}

		if old, ok := st.issues[issue.Parent]; ok {
			old.RemoveChild(id)
		}
		issue.Parent = parentID
		parent.AddChild(id)
		return nil
	})
}

// Detach makes id a root issue.
func (s *Store) Detach(id int) error {
	return s.update(func(st *state) error {
		issue, err := st.get(id)
		if err != nil {
			return err
		}
		if issue.Parent == 0 {
			return errUnchanged
		}
		if old, ok := st.issues[issue.Parent]; ok {
			old.RemoveChild(id)
		}
		issue.Parent = 0
		return nil
	})
}
