// Package store owns the in-memory issue map and every operation on it.
//
// A Store is loaded once from a Backend, and each mutating operation works
// on a copy of the state that only replaces the live state after the whole
// snapshot has been written back. A failed operation leaves both memory and
// disk untouched.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/track/internal/migrate"
	"github.com/zulandar/track/internal/models"
)

// Backend loads and saves whole snapshots.
type Backend interface {
	Load() (*migrate.Snapshot, error)
	Save(*migrate.Snapshot) error
}

// RevisionSource reports the revision that is current right now.
type RevisionSource interface {
	Head(ctx context.Context) (string, error)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the issue collection.
type Store struct {
	backend Backend
	revs    RevisionSource
	now     func() time.Time

	issues   map[int]*models.Issue
	maxID    int
	repaired int
}

// errUnchanged short-circuits an update that has nothing to write.
var errUnchanged = errors.New("unchanged")

// Open loads the store from backend and upgrades it to the current schema.
// A backend with no data yields an empty store.
func Open(backend Backend, revs RevisionSource, opts ...Option) (*Store, error) {
	snap, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("store: load: %w", err)
	}
	res, err := migrate.Upgrade(snap)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	s := &Store{
		backend:  backend,
		revs:     revs,
		now:      time.Now,
		issues:   res.Issues,
		maxID:    res.MaxID,
		repaired: res.Repaired,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save writes the full current state through the backend.
func (s *Store) Save() error {
	if err := s.backend.Save(migrate.Build(s.issues, s.maxID)); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	return nil
}

// MaxID returns the highest id ever issued.
func (s *Store) MaxID() int { return s.maxID }

// Len returns the number of issues.
func (s *Store) Len() int { return len(s.issues) }

// Repaired returns how many hierarchy links were fixed while loading.
func (s *Store) Repaired() int { return s.repaired }

// Get returns a copy of the issue with the given id.
func (s *Store) Get(id int) (*models.Issue, error) {
	issue, ok := s.issues[id]
	if !ok {
		return nil, fmt.Errorf("store: issue %d: %w", id, ErrNotFound)
	}
	return issue.Clone(), nil
}

// Issues returns a copy of the whole id → issue map.
func (s *Store) Issues() map[int]*models.Issue {
	out := make(map[int]*models.Issue, len(s.issues))
	for id, issue := range s.issues {
		out[id] = issue.Clone()
	}
	return out
}

// state is the working copy an operation mutates.
type state struct {
	issues map[int]*models.Issue
	maxID  int
}

func (st *state) get(id int) (*models.Issue, error) {
	issue, ok := st.issues[id]
	if !ok {
		return nil, fmt.Errorf("store: issue %d: %w", id, ErrNotFound)
	}
	return issue, nil
}

// isAncestor reports whether ancestor is on the parent chain of id.
func (st *state) isAncestor(ancestor, id int) bool {
	cur := id
	for range len(st.issues) + 1 {
		issue, ok := st.issues[cur]
		if !ok || issue.Parent == 0 {
			return false
		}
		if issue.Parent == ancestor {
			return true
		}
		cur = issue.Parent
	}
	// A chain longer than the store is itself a cycle.
	return true
}

// update applies fn to a deep copy of the state, persists the copy and only
// then makes it live.
func (s *Store) update(fn func(st *state) error) error {
	st := &state{
		issues: make(map[int]*models.Issue, len(s.issues)),
		maxID:  s.maxID,
	}
	for id, issue := range s.issues {
		st.issues[id] = issue.Clone()
	}

	if err := fn(st); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	if err := s.backend.Save(migrate.Build(st.issues, st.maxID)); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	s.issues, s.maxID = st.issues, st.maxID
	return nil
}
