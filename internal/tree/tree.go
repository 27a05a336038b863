// Package tree draws the parent/child hierarchy of issues with box-drawing
// connectors.
package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/zulandar/track/internal/models"
)

const (
	branch = "├"
	end    = "└"
	pipe   = "|"
	glyph  = "█"

	// DefaultWidth is the line budget used when Options.Width is zero.
	DefaultWidth = 100

	// overhead covers the connector, the three-digit id, the glyph and
	// the separating spaces.
	overhead = 9
)

var (
	// ErrNotFound is returned when the requested root issue does not exist.
	ErrNotFound = errors.New("issue not found")
	// ErrCycle is returned when the parent/child links loop back on themselves.
	ErrCycle = errors.New("issue hierarchy contains a cycle")
)

// Options controls rendering.
type Options struct {
	Width int
	Color bool
}

type renderer struct {
	issues  map[int]*models.Issue
	width   int
	open    *color.Color
	closed  *color.Color
	visited map[int]bool
	buf     bytes.Buffer
}

// Render writes the tree to w. With rootID zero it draws every open issue
// that has no parent; otherwise it draws only rootID and its descendants.
// Siblings are ordered by ascending priority, then id. Nothing is written
// when an error is returned.
func Render(w io.Writer, issues map[int]*models.Issue, rootID int, opts Options) error {
	r := &renderer{
		issues:  issues,
		width:   opts.Width,
		open:    color.New(color.FgGreen),
		closed:  color.New(color.FgRed),
		visited: make(map[int]bool, len(issues)),
	}
	if r.width <= 0 {
		r.width = DefaultWidth
	}
	if opts.Color {
		r.open.EnableColor()
		r.closed.EnableColor()
	} else {
		r.open.DisableColor()
		r.closed.DisableColor()
	}

	var roots []*models.Issue
	if rootID != 0 {
		root, ok := issues[rootID]
		if !ok {
			return fmt.Errorf("tree: issue %d: %w", rootID, ErrNotFound)
		}
		roots = []*models.Issue{root}
	} else {
		for _, issue := range issues {
			if issue.Parent == 0 && issue.IsOpen {
				roots = append(roots, issue)
			}
		}
		models.SortAscending(roots)
	}

	if err := r.level(roots, ""); err != nil {
		return err
	}
	r.buf.WriteString("\n")
	_, err := w.Write(r.buf.Bytes())
	return err
}

func (r *renderer) level(items []*models.Issue, prefix string) error {
	for n, item := range items {
		if r.visited[item.ID] {
			return fmt.Errorf("tree: issue %d: %w", item.ID, ErrCycle)
		}
		r.visited[item.ID] = true

		last := n == len(items)-1
		connector, next := branch, prefix+" "+pipe+" "
		if last {
			connector, next = end, prefix+"   "
		}
		fmt.Fprintf(&r.buf, "%s %s %03d %s %s\n",
			prefix, connector, item.ID, r.glyph(item), truncate(item.Summary(), r.width-overhead-len(prefix)))

		if err := r.level(r.children(item), next); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) children(item *models.Issue) []*models.Issue {
	kids := make([]*models.Issue, 0, len(item.Children))
	for _, id := range item.Children {
		if child, ok := r.issues[id]; ok {
			kids = append(kids, child)
		}
	}
	models.SortAscending(kids)
	return kids
}

func (r *renderer) glyph(item *models.Issue) string {
	if item.IsOpen {
		return r.open.Sprint(glyph)
	}
	return r.closed.Sprint(glyph)
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
