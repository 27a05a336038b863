package store

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/zulandar/track/internal/models"
)

// whereEnv is what a --where expression can see of an issue.
type whereEnv struct {
	ID       int      `expr:"id"`
	Priority int      `expr:"priority"`
	Status   string   `expr:"status"`
	Open     bool     `expr:"open"`
	Tags     []string `expr:"tags"`
	Parent   int      `expr:"parent"`
	Children []int    `expr:"children"`
	Message  string   `expr:"message"`
	Summary  string   `expr:"summary"`
	Commit   string   `expr:"commit"`
}

func newWhereEnv(i *models.Issue) whereEnv {
	return whereEnv{
		ID:       i.ID,
		Priority: i.Priority,
		Status:   i.Status,
		Open:     i.IsOpen,
		Tags:     i.Tags,
		Parent:   i.Parent,
		Children: i.Children,
		Message:  i.Message,
		Summary:  i.Summary(),
		Commit:   i.CommitHash,
	}
}

// Where is a compiled boolean filter such as
// `priority >= 4 && "bug" in tags`.
type Where struct {
	source  string
	program *vm.Program
}

// CompileWhere parses and type-checks a filter expression.
func CompileWhere(source string) (*Where, error) {
	program, err := expr.Compile(source, expr.Env(whereEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("store: where %q: %w: %v", source, ErrInvalidInput, err)
	}
	return &Where{source: source, program: program}, nil
}

// Match evaluates the filter against one issue.
func (w *Where) Match(i *models.Issue) (bool, error) {
	out, err := expr.Run(w.program, newWhereEnv(i))
	if err != nil {
		return false, fmt.Errorf("store: where %q on issue %d: %w", w.source, i.ID, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Apply keeps the issues the filter matches, preserving order.
func (w *Where) Apply(issues []*models.Issue) ([]*models.Issue, error) {
	var out []*models.Issue
	for _, i := range issues {
		ok, err := w.Match(i)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, i)
		}
	}
	return out, nil
}
