package store

import "errors"

var (
	// ErrNotFound is returned for an unknown issue id.
	ErrNotFound = errors.New("no such issue")
	// ErrInvalidInput covers malformed ids, priorities and edit requests.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyMessage aborts an add or message edit with a blank message.
	ErrEmptyMessage = errors.New("empty message")
	// ErrBlockedByOpenChildren aborts closing an issue with open children.
	ErrBlockedByOpenChildren = errors.New("issue has open children; close them first")
	// ErrTagNotFound is returned when removing a tag the issue does not carry.
	ErrTagNotFound = errors.New("tag not found")
	// ErrCycle is returned when an attach would make an issue its own ancestor.
	ErrCycle = errors.New("attach would create a cycle")
)
