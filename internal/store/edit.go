package store

import "fmt"

// EditKind selects the single field an Edit changes.
type EditKind int

const (
	EditPriority EditKind = iota + 1
	EditAddTag
	EditRemoveTag
	EditAttach
	EditDetach
	EditMessage
)

func (k EditKind) String() string {
	switch k {
	case EditPriority:
		return "priority"
	case EditAddTag:
		return "add-tag"
	case EditRemoveTag:
		return "rm-tag"
	case EditAttach:
		return "attach"
	case EditDetach:
		return "detach"
	case EditMessage:
		return "message"
	}
	return fmt.Sprintf("EditKind(%d)", int(k))
}

// Edit is one change to one field. Only the value matching Kind is read.
type Edit struct {
	Kind     EditKind
	Priority int
	Tag      string
	Parent   int
	Message  string
}

// Edit applies e to issue id.
func (s *Store) Edit(id int, e Edit) error {
	switch e.Kind {
	case EditPriority:
		return s.SetPriority(id, e.Priority)
	case EditAddTag:
		return s.AddTag(id, e.Tag)
	case EditRemoveTag:
		return s.RemoveTag(id, e.Tag)
	case EditAttach:
		return s.Attach(id, e.Parent)
	case EditDetach:
		return s.Detach(id)
	case EditMessage:
		return s.SetMessage(id, e.Message)
	}
	return fmt.Errorf("store: edit %d: %w: unknown edit %s", id, ErrInvalidInput, e.Kind)
}
